package commands

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"homeboard/contexts/marketplace/moderation-service/adapters/assets"
	"homeboard/contexts/marketplace/moderation-service/adapters/memory"
	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	domainerrors "homeboard/contexts/marketplace/moderation-service/domain/errors"
	"homeboard/contexts/marketplace/moderation-service/ports"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func newAttachFixture(t *testing.T) (AttachImageUseCase, *memory.Store, string) {
	t.Helper()
	store := memory.NewStore(nil)
	create := CreateSubmissionUseCase{Repository: store, Clock: store, IDGen: store}
	created, err := create.Execute(context.Background(), CreateSubmissionCommand{
		SubmitterID: "owner@example.com",
		Content: entities.PropertyContent{
			Title:           "Corner flat",
			Description:     "Needs photos",
			Price:           200000,
			PropertyType:    "apartment",
			TransactionType: "sale",
			Address:         entities.Address{City: "Incheon"},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	attach := AttachImageUseCase{Repository: store, Assets: assets.NewMemoryStore(), Clock: store}
	return attach, store, created.SubmissionID
}

func TestAttachImageAppendsReference(t *testing.T) {
	attach, _, id := newAttachFixture(t)
	owner := ports.Actor{ID: "owner@example.com"}

	refs, err := attach.Execute(context.Background(), AttachImageCommand{SubmissionID: id, Actor: owner, Data: pngBytes(t)})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected one ref, got %v", refs)
	}

	// Same bytes again: a second, distinct reference, no dedup.
	refs, err = attach.Execute(context.Background(), AttachImageCommand{SubmissionID: id, Actor: owner, Data: pngBytes(t)})
	if err != nil {
		t.Fatalf("second attach failed: %v", err)
	}
	if len(refs) != 2 || refs[0] == refs[1] {
		t.Fatalf("expected two distinct refs, got %v", refs)
	}
}

func TestAttachImageForbiddenForOtherCaller(t *testing.T) {
	attach, _, id := newAttachFixture(t)

	_, err := attach.Execute(context.Background(), AttachImageCommand{
		SubmissionID: id,
		Actor:        ports.Actor{ID: "someone-else@example.com"},
		Data:         pngBytes(t),
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAttachImageBlockedOutsidePending(t *testing.T) {
	attach, store, id := newAttachFixture(t)

	review := ReviewSubmissionUseCase{Repository: store, Clock: store, IDGen: store}
	if _, err := review.Reject(context.Background(), ReviewCommand{SubmissionID: id, ActorID: "admin-1"}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	_, err := attach.Execute(context.Background(), AttachImageCommand{
		SubmissionID: id,
		Actor:        ports.Actor{ID: "owner@example.com"},
		Data:         pngBytes(t),
	})
	if !errors.Is(err, domainerrors.ErrInvalidStatusTransition) {
		t.Fatalf("expected invalid transition after reject, got %v", err)
	}
}

func TestAttachImageRejectsNonImagePayload(t *testing.T) {
	attach, _, id := newAttachFixture(t)

	_, err := attach.Execute(context.Background(), AttachImageCommand{
		SubmissionID: id,
		Actor:        ports.Actor{ID: "owner@example.com"},
		Data:         []byte("definitely not an image"),
	})
	if !errors.Is(err, domainerrors.ErrAssetRejected) {
		t.Fatalf("expected asset rejected, got %v", err)
	}
}
