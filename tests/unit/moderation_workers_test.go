package unit

import (
	"context"
	"testing"
	"time"

	moderationservice "homeboard/contexts/marketplace/moderation-service"
	"homeboard/contexts/marketplace/moderation-service/application/commands"
	workerapp "homeboard/contexts/marketplace/moderation-service/application/workers"
	httptransport "homeboard/contexts/marketplace/moderation-service/transport/http"
	"homeboard/internal/platform/messaging"
	"homeboard/internal/shared/events"
	"homeboard/internal/shared/outbox"
)

func approvedModule(t *testing.T, title string) (moderationservice.Module, string) {
	t.Helper()
	module := moderationservice.NewInMemoryModule(nil, nil)
	created, err := module.Handler.CreateSubmissionHandler(context.Background(), "seller-1", sampleCreateRequest(title))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := module.Handler.ApproveSubmissionHandler(context.Background(), "mod-1", created.Submission.SubmissionID, httptransport.ReviewRequest{}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	return module, created.Submission.SubmissionID
}

func TestOutboxRelayPublishesListingEvents(t *testing.T) {
	module, submissionID := approvedModule(t, "Relayed")

	if _, err := module.Handler.ConvertApprovedHandler(context.Background()); err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	rows, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Status != outbox.StatusPending || rows[0].EventType != "listing.published" {
		t.Fatalf("expected one pending listing.published row, got %+v", rows)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := messaging.NewBus(nil)
	received := make(chan events.Envelope, 1)
	err = bus.Subscribe(ctx, "listing.published", "listing-read-side", func(_ context.Context, event events.Envelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	relay := workerapp.OutboxRelay{
		Outbox:    module.Store,
		Publisher: bus,
		Clock:     module.Store,
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	select {
	case event := <-received:
		if event.EventType != "listing.published" || event.EntityType != "listing" {
			t.Fatalf("unexpected envelope: %+v", event)
		}
		payload, ok := event.Payload.(map[string]any)
		if !ok {
			t.Fatalf("unexpected payload shape: %T", event.Payload)
		}
		if payload["submission_id"] != submissionID {
			t.Fatalf("expected payload for submission %s, got %v", submissionID, payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listing.published event never reached the bus consumer")
	}

	remaining, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected relayed row to be marked published, still pending: %+v", remaining)
	}

	// A second cycle with nothing pending is a no-op.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("idle relay run failed: %v", err)
	}
}

func TestConvertJobHonorsFeatureFlag(t *testing.T) {
	module, submissionID := approvedModule(t, "Scheduled")

	convert := commands.ConvertApprovedUseCase{
		Conversions: module.Store,
		Clock:       module.Store,
		IDGen:       module.Store,
	}

	disabled := workerapp.ConvertJob{Convert: convert, Disabled: true}
	if err := disabled.RunOnce(context.Background()); err != nil {
		t.Fatalf("disabled job failed: %v", err)
	}
	listings, err := module.Handler.ListListingsHandler(context.Background())
	if err != nil {
		t.Fatalf("list listings failed: %v", err)
	}
	if len(listings.Items) != 0 {
		t.Fatalf("disabled job must not convert, got %d listings", len(listings.Items))
	}

	enabled := workerapp.ConvertJob{Convert: convert}
	if err := enabled.RunOnce(context.Background()); err != nil {
		t.Fatalf("enabled job failed: %v", err)
	}
	listings, err = module.Handler.ListListingsHandler(context.Background())
	if err != nil {
		t.Fatalf("list listings failed: %v", err)
	}
	if len(listings.Items) != 1 || listings.Items[0].SubmissionID != submissionID {
		t.Fatalf("expected the approved submission converted, got %+v", listings.Items)
	}
}
