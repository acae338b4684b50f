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

type AttachImageCommand struct {
	SubmissionID string
	Actor        ports.Actor
	Data         []byte
}

type AttachImageUseCase struct {
	Repository ports.Repository
	Assets     ports.AssetStore
	Clock      ports.Clock
	Logger     *slog.Logger
}

// Execute stores one image and appends its reference to the submission's
// media list. Images may only be attached while the submission is still
// pending; the media set freezes once review starts, so the reviewer and
// the eventual listing see the same images. Attaching the same image
// twice yields two references.
func (uc AttachImageUseCase) Execute(ctx context.Context, cmd AttachImageCommand) ([]string, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID := strings.TrimSpace(cmd.SubmissionID)

	submission, err := uc.Repository.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if !cmd.Actor.Admin && submission.SubmitterID != cmd.Actor.ID {
		return nil, domainerrors.ErrForbidden
	}
	if submission.Status != entities.SubmissionStatusPending {
		return nil, domainerrors.ErrInvalidStatusTransition
	}

	ref, err := uc.Assets.Store(ctx, cmd.Data)
	if err != nil {
		return nil, err
	}

	refs, err := uc.Repository.AppendImageRef(ctx, submissionID, ref, entities.SubmissionStatusPending, uc.Clock.Now().UTC())
	if err != nil {
		// The reference was never recorded; drop the orphaned binary so
		// the call stays all-or-nothing.
		if deleteErr := uc.Assets.Delete(ctx, ref); deleteErr != nil {
			logger.Warn("orphaned asset cleanup failed",
				"event", "submission_image_cleanup_failed",
				"module", "marketplace/moderation-service",
				"layer", "application",
				"submission_id", submissionID,
				"asset_ref", ref,
				"error", deleteErr.Error(),
			)
		}
		return nil, err
	}

	logger.Info("submission image attached",
		"event", "submission_image_attached",
		"module", "marketplace/moderation-service",
		"layer", "application",
		"submission_id", submissionID,
		"asset_ref", ref,
		"image_count", len(refs),
	)
	return refs, nil
}
