package queries

import (
	"context"
	"log/slog"
	"strings"

	application "homeboard/contexts/marketplace/moderation-service/application"
	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	domainerrors "homeboard/contexts/marketplace/moderation-service/domain/errors"
	"homeboard/contexts/marketplace/moderation-service/ports"
)

type ListSubmissionsQuery struct {
	SubmitterID string
	Status      string
}

type QueryUseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

// GetSubmission returns the full record for the owner or an admin.
func (uc QueryUseCase) GetSubmission(ctx context.Context, submissionID string, actor ports.Actor) (entities.Submission, error) {
	submission, err := uc.Repository.GetSubmission(ctx, strings.TrimSpace(submissionID))
	if err != nil {
		return entities.Submission{}, err
	}
	if !actor.Admin && submission.SubmitterID != actor.ID {
		return entities.Submission{}, domainerrors.ErrForbidden
	}
	return submission, nil
}

// ListSubmissions lists all submissions, optionally filtered by status.
// Admin only; the transport gate enforces that before calling here.
func (uc QueryUseCase) ListSubmissions(ctx context.Context, query ListSubmissionsQuery) ([]entities.Submission, error) {
	filter := ports.SubmissionFilter{SubmitterID: strings.TrimSpace(query.SubmitterID)}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status := entities.SubmissionStatus(raw)
		if !status.IsValid() {
			return nil, domainerrors.ErrInvalidStatusFilter
		}
		filter.Status = status
	}
	return uc.Repository.ListSubmissions(ctx, filter)
}

// ListOwnSubmissions lists the caller's submissions.
func (uc QueryUseCase) ListOwnSubmissions(ctx context.Context, submitterID string) ([]entities.Submission, error) {
	return uc.Repository.ListSubmissions(ctx, ports.SubmissionFilter{
		SubmitterID: strings.TrimSpace(submitterID),
	})
}

func (uc QueryUseCase) ListAudits(ctx context.Context, submissionID string) ([]entities.ReviewAudit, error) {
	if _, err := uc.Repository.GetSubmission(ctx, strings.TrimSpace(submissionID)); err != nil {
		return nil, err
	}
	return uc.Repository.ListAudits(ctx, strings.TrimSpace(submissionID))
}

type StatusSummary struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

// Summary counts submissions by status; an empty submitterID yields the
// global (admin) summary.
func (uc QueryUseCase) Summary(ctx context.Context, submitterID string) (StatusSummary, error) {
	items, err := uc.Repository.ListSubmissions(ctx, ports.SubmissionFilter{
		SubmitterID: strings.TrimSpace(submitterID),
	})
	if err != nil {
		return StatusSummary{}, err
	}
	summary := StatusSummary{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case entities.SubmissionStatusPending:
			summary.Pending++
		case entities.SubmissionStatusApproved:
			summary.Approved++
		case entities.SubmissionStatusRejected:
			summary.Rejected++
		}
	}
	application.ResolveLogger(uc.Logger).Debug("submission summary computed",
		"event", "submission_summary_computed",
		"module", "marketplace/moderation-service",
		"layer", "application",
		"submitter_id", submitterID,
		"total", summary.Total,
	)
	return summary, nil
}
