package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	domainerrors "homeboard/contexts/marketplace/moderation-service/domain/errors"
	"homeboard/contexts/marketplace/moderation-service/ports"
	"homeboard/internal/shared/events"
	"homeboard/internal/shared/outbox"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing tests and local runs. One
// mutex covers submissions, listings, audits and outbox rows, so the
// conversion commit is atomic the same way the postgres transaction is.
type Store struct {
	mu sync.RWMutex

	submissions map[string]entities.Submission
	listings    map[string]entities.Listing
	converted   map[string]string // submission id -> listing id
	audits      map[string][]entities.ReviewAudit
	outbox      []outbox.Message
}

func NewStore(seed []entities.Submission) *Store {
	submissions := make(map[string]entities.Submission, len(seed))
	for _, item := range seed {
		submissions[item.SubmissionID] = item
	}
	return &Store{
		submissions: submissions,
		listings:    make(map[string]entities.Listing),
		converted:   make(map[string]string),
		audits:      make(map[string][]entities.ReviewAudit),
	}
}

func (s *Store) CreateSubmission(_ context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions[submission.SubmissionID] = submission
	return nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.submissions[strings.TrimSpace(submissionID)]
	if !exists {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return item, nil
}

func (s *Store) UpdateSubmissionStatus(_ context.Context, submission entities.Submission, expected entities.SubmissionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.submissions[submission.SubmissionID]
	if !exists {
		return domainerrors.ErrSubmissionNotFound
	}
	if current.Status != expected {
		return domainerrors.ErrInvalidStatusTransition
	}
	// Merge only the review columns, like the postgres adapter. Image
	// refs appended between the caller's read and this write survive.
	current.Status = submission.Status
	current.ReviewComment = submission.ReviewComment
	current.ReviewedBy = submission.ReviewedBy
	current.ReviewedAt = submission.ReviewedAt
	current.UpdatedAt = submission.UpdatedAt
	s.submissions[submission.SubmissionID] = current
	return nil
}

func (s *Store) AppendImageRef(_ context.Context, submissionID string, ref string, expected entities.SubmissionStatus, at time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.submissions[strings.TrimSpace(submissionID)]
	if !exists {
		return nil, domainerrors.ErrSubmissionNotFound
	}
	if current.Status != expected {
		return nil, domainerrors.ErrInvalidStatusTransition
	}
	current.ImageRefs = append(current.ImageRefs, ref)
	current.UpdatedAt = at
	s.submissions[current.SubmissionID] = current
	return append([]string(nil), current.ImageRefs...), nil
}

func (s *Store) ListSubmissions(_ context.Context, filter ports.SubmissionFilter) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Submission, 0, len(s.submissions))
	for _, item := range s.submissions {
		if strings.TrimSpace(filter.SubmitterID) != "" && item.SubmitterID != strings.TrimSpace(filter.SubmitterID) {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) AddAudit(_ context.Context, audit entities.ReviewAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audits[audit.SubmissionID] = append(s.audits[audit.SubmissionID], audit)
	return nil
}

func (s *Store) ListAudits(_ context.Context, submissionID string) ([]entities.ReviewAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entities.ReviewAudit(nil), s.audits[strings.TrimSpace(submissionID)]...), nil
}

func (s *Store) ListApproved(_ context.Context) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []entities.Submission
	for _, item := range s.submissions {
		if item.Status == entities.SubmissionStatusApproved {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ConvertSubmission(_ context.Context, source entities.Submission, listing entities.Listing, event events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.converted[source.SubmissionID]; exists {
		return domainerrors.ErrAlreadyConverted
	}
	current, exists := s.submissions[source.SubmissionID]
	if !exists {
		return domainerrors.ErrAlreadyConverted
	}
	if current.Status != entities.SubmissionStatusApproved {
		return domainerrors.ErrSourceChanged
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.listings[listing.ListingID] = listing
	s.converted[source.SubmissionID] = listing.ListingID
	delete(s.submissions, source.SubmissionID)
	s.outbox = append(s.outbox, outbox.Message{
		ID:        event.EventID,
		EventType: event.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: listing.PublishedAt,
	})
	return nil
}

func (s *Store) GetListing(_ context.Context, listingID string) (entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.listings[strings.TrimSpace(listingID)]
	if !exists {
		return entities.Listing{}, domainerrors.ErrListingNotFound
	}
	return item, nil
}

func (s *Store) ListListings(_ context.Context) ([]entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Listing, 0, len(s.listings))
	for _, item := range s.listings {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	return items, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []outbox.Message
	for _, row := range s.outbox {
		if row.Status != outbox.StatusPending {
			continue
		}
		pending = append(pending, row)
		if limit > 0 && len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].ID == outboxID {
			s.outbox[i].Status = outbox.StatusPublished
			published := at
			s.outbox[i].PublishedAt = &published
			return nil
		}
	}
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
