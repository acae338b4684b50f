package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "homeboard/contexts/marketplace/moderation-service/application"
	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	domainerrors "homeboard/contexts/marketplace/moderation-service/domain/errors"
	"homeboard/contexts/marketplace/moderation-service/ports"
)

type CreateSubmissionCommand struct {
	SubmitterID string
	Content     entities.PropertyContent
}

type CreateSubmissionUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Execute creates a pending submission from the content snapshot. Images
// are attached through separate calls once the id exists; a pending
// submission with zero images is an expected intermediate state.
func (uc CreateSubmissionUseCase) Execute(ctx context.Context, cmd CreateSubmissionCommand) (entities.Submission, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Submission{}, err
	}
	now := uc.Clock.Now().UTC()
	submission := entities.Submission{
		SubmissionID: submissionID,
		SubmitterID:  strings.TrimSpace(cmd.SubmitterID),
		Content:      trimContent(cmd.Content),
		Status:       entities.SubmissionStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if missing := submission.MissingFields(); len(missing) > 0 {
		return entities.Submission{}, fmt.Errorf("%w: %s", domainerrors.ErrInvalidSubmissionInput, strings.Join(missing, ", "))
	}
	if err := uc.Repository.CreateSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}
	logger.Info("submission created",
		"event", "submission_created",
		"module", "marketplace/moderation-service",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"submitter_id", submission.SubmitterID,
	)
	return submission, nil
}

func trimContent(content entities.PropertyContent) entities.PropertyContent {
	content.Title = strings.TrimSpace(content.Title)
	content.Description = strings.TrimSpace(content.Description)
	content.PropertyType = strings.TrimSpace(content.PropertyType)
	content.TransactionType = strings.TrimSpace(content.TransactionType)
	content.Address.City = strings.TrimSpace(content.Address.City)
	content.Address.District = strings.TrimSpace(content.Address.District)
	content.Address.Street = strings.TrimSpace(content.Address.Street)
	content.Address.PostalCode = strings.TrimSpace(content.Address.PostalCode)
	return content
}
