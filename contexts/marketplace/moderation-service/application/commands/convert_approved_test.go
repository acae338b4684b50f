package commands

import (
	"context"
	"errors"
	"testing"

	"homeboard/contexts/marketplace/moderation-service/adapters/memory"
	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	"homeboard/contexts/marketplace/moderation-service/ports"
	"homeboard/internal/shared/events"
)

func newConvertFixture(store *memory.Store) ConvertApprovedUseCase {
	return ConvertApprovedUseCase{
		Conversions: store,
		Cache:       memory.NewListingCache(),
		Clock:       store,
		IDGen:       store,
	}
}

func approvedSubmission(t *testing.T, store *memory.Store, title string, imageCount int) string {
	t.Helper()
	create := CreateSubmissionUseCase{Repository: store, Clock: store, IDGen: store}
	created, err := create.Execute(context.Background(), CreateSubmissionCommand{
		SubmitterID: "owner@example.com",
		Content: entities.PropertyContent{
			Title:           title,
			Description:     "spacious",
			Price:           300000,
			PropertyType:    "apartment",
			TransactionType: "rent",
			Address:         entities.Address{City: "Seoul"},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for i := 0; i < imageCount; i++ {
		if _, err := store.AppendImageRef(context.Background(), created.SubmissionID, "ref.jpg", entities.SubmissionStatusPending, store.Now()); err != nil {
			t.Fatalf("append image failed: %v", err)
		}
	}
	review := ReviewSubmissionUseCase{Repository: store, Clock: store, IDGen: store}
	if _, err := review.Approve(context.Background(), ReviewCommand{SubmissionID: created.SubmissionID, ActorID: "admin-1"}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	return created.SubmissionID
}

func TestConvertNothingApproved(t *testing.T) {
	store := memory.NewStore(nil)
	report, err := newConvertFixture(store).Execute(context.Background())
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if report.Converted != 0 || report.Skipped != 0 || len(report.Failures) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestConvertCarriesImagesAndConsumesSource(t *testing.T) {
	store := memory.NewStore(nil)
	id := approvedSubmission(t, store, "Riverside loft", 3)

	report, err := newConvertFixture(store).Execute(context.Background())
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if report.Converted != 1 {
		t.Fatalf("expected 1 converted, got %+v", report)
	}

	listings, err := store.ListListings(context.Background())
	if err != nil {
		t.Fatalf("list listings failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected one listing, got %d", len(listings))
	}
	if listings[0].SubmissionID != id {
		t.Fatalf("provenance mismatch: %s", listings[0].SubmissionID)
	}
	if len(listings[0].ImageRefs) != 3 {
		t.Fatalf("expected 3 carried image refs, got %d", len(listings[0].ImageRefs))
	}
	if _, err := store.GetSubmission(context.Background(), id); err == nil {
		t.Fatal("expected source submission to be gone")
	}
}

func TestConvertIsIdempotentAcrossRuns(t *testing.T) {
	store := memory.NewStore(nil)
	approvedSubmission(t, store, "Hillside studio", 0)
	convert := newConvertFixture(store)

	first, err := convert.Execute(context.Background())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Converted != 1 {
		t.Fatalf("expected 1 converted on first run, got %+v", first)
	}

	second, err := convert.Execute(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Converted != 0 {
		t.Fatalf("expected 0 converted on second run, got %+v", second)
	}

	listings, _ := store.ListListings(context.Background())
	if len(listings) != 1 {
		t.Fatalf("expected no duplicate listings, got %d", len(listings))
	}
}

// failingConversions fails a chosen submission's commit while letting
// the rest of the batch through.
type failingConversions struct {
	ports.ConversionRepository
	failID string
}

func (f failingConversions) ConvertSubmission(ctx context.Context, source entities.Submission, listing entities.Listing, event events.Envelope) error {
	if source.SubmissionID == f.failID {
		return errors.New("listing insert refused")
	}
	return f.ConversionRepository.ConvertSubmission(ctx, source, listing, event)
}

func TestConvertPartialBatchFailure(t *testing.T) {
	store := memory.NewStore(nil)
	badID := approvedSubmission(t, store, "Broken one", 0)
	approvedSubmission(t, store, "Good one", 0)

	convert := newConvertFixture(store)
	convert.Conversions = failingConversions{ConversionRepository: store, failID: badID}

	report, err := convert.Execute(context.Background())
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if report.Converted != 1 {
		t.Fatalf("expected the healthy item converted, got %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].SubmissionID != badID {
		t.Fatalf("expected the broken item reported, got %+v", report.Failures)
	}

	// The failed item stays approved and is picked up by the next run.
	remaining, err := store.GetSubmission(context.Background(), badID)
	if err != nil {
		t.Fatalf("failed item should remain: %v", err)
	}
	if remaining.Status != entities.SubmissionStatusApproved {
		t.Fatalf("failed item must stay approved, got %s", remaining.Status)
	}

	retry, err := newConvertFixture(store).Execute(context.Background())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if retry.Converted != 1 || len(retry.Failures) != 0 {
		t.Fatalf("expected clean retry, got %+v", retry)
	}
}
