package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "homeboard/contexts/marketplace/moderation-service/application"
	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	domainerrors "homeboard/contexts/marketplace/moderation-service/domain/errors"
	"homeboard/contexts/marketplace/moderation-service/ports"
	"homeboard/internal/shared/events"
)

const listingPublishedTopic = "listing.published"

type ConversionFailure struct {
	SubmissionID string
	Reason       string
}

type ConversionReport struct {
	Converted int
	Skipped   int
	Failures  []ConversionFailure
}

type ConvertApprovedUseCase struct {
	Conversions ports.ConversionRepository
	Cache       ports.ListingCache
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// Execute drains the approved set into published listings. Items are
// independent: each gets its own transaction, a failed item stays
// approved for the next run, and an item whose status changed under the
// batch is skipped. Re-running with no new approvals converts zero.
func (uc ConvertApprovedUseCase) Execute(ctx context.Context) (ConversionReport, error) {
	logger := application.ResolveLogger(uc.Logger)
	approved, err := uc.Conversions.ListApproved(ctx)
	if err != nil {
		return ConversionReport{}, err
	}

	var report ConversionReport
	now := uc.Clock.Now().UTC()
	for _, submission := range approved {
		listing, err := uc.convertOne(ctx, submission, now)
		switch {
		case err == nil:
			report.Converted++
			if uc.Cache != nil {
				uc.Cache.SetListing(ctx, listing)
			}
		case errors.Is(err, domainerrors.ErrSourceChanged), errors.Is(err, domainerrors.ErrAlreadyConverted):
			report.Skipped++
			logger.Info("conversion skipped",
				"event", "conversion_item_skipped",
				"module", "marketplace/moderation-service",
				"layer", "application",
				"submission_id", submission.SubmissionID,
				"reason", err.Error(),
			)
		default:
			report.Failures = append(report.Failures, ConversionFailure{
				SubmissionID: submission.SubmissionID,
				Reason:       err.Error(),
			})
			logger.Error("conversion item failed",
				"event", "conversion_item_failed",
				"module", "marketplace/moderation-service",
				"layer", "application",
				"submission_id", submission.SubmissionID,
				"error", err.Error(),
			)
		}
	}

	logger.Info("conversion cycle completed",
		"event", "conversion_cycle_completed",
		"module", "marketplace/moderation-service",
		"layer", "application",
		"converted_count", report.Converted,
		"skipped_count", report.Skipped,
		"failure_count", len(report.Failures),
	)
	return report, nil
}

func (uc ConvertApprovedUseCase) convertOne(ctx context.Context, submission entities.Submission, now time.Time) (entities.Listing, error) {
	listingID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Listing{}, err
	}
	listing := entities.Listing{
		ListingID:    listingID,
		SubmissionID: submission.SubmissionID,
		SubmitterID:  submission.SubmitterID,
		Content:      submission.Content,
		ImageRefs:    append([]string(nil), submission.ImageRefs...),
		PublishedAt:  now,
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Listing{}, err
	}
	event := events.Envelope{
		EventID:        eventID,
		EventType:      listingPublishedTopic,
		SourceService:  "marketplace/moderation-service",
		OccurredAtUTC:  now,
		EntityType:     "listing",
		EntityID:       listing.ListingID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"listing_id":    listing.ListingID,
			"submission_id": listing.SubmissionID,
			"submitter_id":  listing.SubmitterID,
			"title":         listing.Content.Title,
			"published_at":  now.Format(time.RFC3339),
		},
	}

	if err := uc.Conversions.ConvertSubmission(ctx, submission, listing, event); err != nil {
		return entities.Listing{}, err
	}
	return listing, nil
}
