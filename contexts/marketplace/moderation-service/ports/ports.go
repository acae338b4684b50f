package ports

import (
	"context"
	"time"

	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	"homeboard/internal/shared/events"
	"homeboard/internal/shared/outbox"
)

// Actor is the caller identity resolved by the session collaborator.
type Actor struct {
	ID    string
	Admin bool
}

type SubmissionFilter struct {
	SubmitterID string
	Status      entities.SubmissionStatus
}

type Repository interface {
	CreateSubmission(ctx context.Context, submission entities.Submission) error
	GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error)
	// UpdateSubmissionStatus persists the submission only if its stored
	// status still equals expected. A stale read loses: the adapter
	// reports ErrInvalidStatusTransition (status moved) or
	// ErrSubmissionNotFound (row gone).
	UpdateSubmissionStatus(ctx context.Context, submission entities.Submission, expected entities.SubmissionStatus) error
	// AppendImageRef adds one reference to the submission's media list,
	// guarded by the same expected-status check, and returns the updated
	// reference list.
	AppendImageRef(ctx context.Context, submissionID string, ref string, expected entities.SubmissionStatus, at time.Time) ([]string, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]entities.Submission, error)
	AddAudit(ctx context.Context, audit entities.ReviewAudit) error
	ListAudits(ctx context.Context, submissionID string) ([]entities.ReviewAudit, error)
}

type ConversionRepository interface {
	ListApproved(ctx context.Context) ([]entities.Submission, error)
	// ConvertSubmission commits one item atomically: insert the listing,
	// delete the source submission conditionally on it still being
	// approved, and append the outbox event. ErrSourceChanged and
	// ErrAlreadyConverted roll the item back without affecting others.
	ConvertSubmission(ctx context.Context, source entities.Submission, listing entities.Listing, event events.Envelope) error
}

type ListingRepository interface {
	GetListing(ctx context.Context, listingID string) (entities.Listing, error)
	ListListings(ctx context.Context) ([]entities.Listing, error)
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, at time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

// AssetStore is the external image-binary collaborator. Store validates
// and normalizes the payload and returns a stable reference.
type AssetStore interface {
	Store(ctx context.Context, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
	Open(ctx context.Context, ref string) ([]byte, string, error)
}

// ListingCache fronts listing reads. Misses are not errors; conversion
// writes through so freshly published listings are warm.
type ListingCache interface {
	GetListing(ctx context.Context, listingID string) (entities.Listing, bool)
	SetListing(ctx context.Context, listing entities.Listing)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
