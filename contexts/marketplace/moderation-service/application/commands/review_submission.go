package commands

import (
	"context"
	"log/slog"
	"strings"

	application "homeboard/contexts/marketplace/moderation-service/application"
	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	domainerrors "homeboard/contexts/marketplace/moderation-service/domain/errors"
	"homeboard/contexts/marketplace/moderation-service/ports"
)

type ReviewCommand struct {
	SubmissionID string
	ActorID      string
	Comment      string
}

type ReviewSubmissionUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Approve moves a pending submission to approved. The write is guarded
// by the status read here, so a concurrent decision on the same
// submission leaves exactly one winner.
func (uc ReviewSubmissionUseCase) Approve(ctx context.Context, cmd ReviewCommand) (entities.Submission, error) {
	return uc.transition(ctx, cmd, "approved", entities.SubmissionStatusPending, entities.SubmissionStatusApproved)
}

// Reject moves a pending submission to rejected. Rejected is terminal:
// the record stays readable but no transition leads out of it.
func (uc ReviewSubmissionUseCase) Reject(ctx context.Context, cmd ReviewCommand) (entities.Submission, error) {
	return uc.transition(ctx, cmd, "rejected", entities.SubmissionStatusPending, entities.SubmissionStatusRejected)
}

// CancelApproval reverts an approval back to pending. Once conversion
// has consumed the submission the record is gone and this reports
// not-found rather than an invalid transition.
func (uc ReviewSubmissionUseCase) CancelApproval(ctx context.Context, cmd ReviewCommand) (entities.Submission, error) {
	return uc.transition(ctx, cmd, "approval_cancelled", entities.SubmissionStatusApproved, entities.SubmissionStatusPending)
}

func (uc ReviewSubmissionUseCase) transition(
	ctx context.Context,
	cmd ReviewCommand,
	action string,
	from entities.SubmissionStatus,
	to entities.SubmissionStatus,
) (entities.Submission, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Submission{}, domainerrors.ErrUnauthorizedActor
	}
	submission, err := uc.Repository.GetSubmission(ctx, strings.TrimSpace(cmd.SubmissionID))
	if err != nil {
		return entities.Submission{}, err
	}
	if submission.Status != from {
		return entities.Submission{}, domainerrors.ErrInvalidStatusTransition
	}

	now := uc.Clock.Now().UTC()
	submission.Status = to
	submission.ReviewComment = strings.TrimSpace(cmd.Comment)
	submission.ReviewedBy = strings.TrimSpace(cmd.ActorID)
	submission.ReviewedAt = &now
	submission.UpdatedAt = now
	if err := uc.Repository.UpdateSubmissionStatus(ctx, submission, from); err != nil {
		return entities.Submission{}, err
	}

	// The transition is committed at this point; a lost audit row is
	// logged rather than turned into a caller-visible error.
	uc.appendAudit(ctx, logger, entities.ReviewAudit{
		SubmissionID: submission.SubmissionID,
		Action:       action,
		OldStatus:    from,
		NewStatus:    to,
		ActorID:      submission.ReviewedBy,
		Comment:      submission.ReviewComment,
		CreatedAt:    now,
	})

	logger.Info("submission reviewed",
		"event", "submission_"+action,
		"module", "marketplace/moderation-service",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"actor_id", submission.ReviewedBy,
	)
	return submission, nil
}

func (uc ReviewSubmissionUseCase) appendAudit(ctx context.Context, logger *slog.Logger, audit entities.ReviewAudit) {
	auditID, err := uc.IDGen.NewID(ctx)
	if err == nil {
		audit.AuditID = auditID
		err = uc.Repository.AddAudit(ctx, audit)
	}
	if err != nil {
		logger.Warn("review audit append failed",
			"event", "review_audit_append_failed",
			"module", "marketplace/moderation-service",
			"layer", "application",
			"submission_id", audit.SubmissionID,
			"action", audit.Action,
			"error", err.Error(),
		)
	}
}
