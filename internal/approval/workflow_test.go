package approval

import (
	"context"
	"errors"
	"testing"

	"github.com/purrscribe/backend/internal/calls"
	"github.com/purrscribe/backend/internal/models"
)

func newFixture(t *testing.T, allowReversal bool) (*Workflow, *calls.Store, string) {
	t.Helper()
	store := calls.NewStore(calls.NewMemoryAudioStore(), nil)
	rec, err := store.Create(context.Background(), models.CallMetadata{PetName: "Max"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewWorkflow(store, allowReversal, nil), store, rec.ID
}

func transcribe(t *testing.T, store *calls.Store, id string) {
	t.Helper()
	_, err := store.UpdateByID(id, func(r *models.CallRecording) {
		r.Transcription = "transcript"
		r.Status = models.ReviewStatusPending
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestApproveRequiresTranscription(t *testing.T) {
	w, store, id := newFixture(t, true)

	if _, err := w.Approve(context.Background(), id, "dr.smith@clinic.test"); !errors.Is(err, ErrNotTranscribed) {
		t.Fatalf("want ErrNotTranscribed, got %v", err)
	}
	rec, _ := store.GetByID(id)
	if rec.Status != "" || rec.ApprovedBy != "" || rec.ApprovedDate != nil {
		t.Fatalf("failed approve mutated the record: %+v", rec)
	}
}

func TestApproveSetsApproverAndTimestamp(t *testing.T) {
	w, store, id := newFixture(t, true)
	transcribe(t, store, id)

	rec, err := w.Approve(context.Background(), id, "dr.smith@clinic.test")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != models.ReviewStatusApproved {
		t.Fatalf("status %q", rec.Status)
	}
	if rec.ApprovedBy != "dr.smith@clinic.test" || rec.ApprovedDate == nil {
		t.Fatalf("approver identity missing: %+v", rec)
	}
}

func TestRejectClearsApproverIdentity(t *testing.T) {
	w, store, id := newFixture(t, true)
	transcribe(t, store, id)

	if _, err := w.Approve(context.Background(), id, "dr.smith@clinic.test"); err != nil {
		t.Fatal(err)
	}
	rec, err := w.Reject(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != models.ReviewStatusRejected {
		t.Fatalf("status %q", rec.Status)
	}
	if rec.ApprovedBy != "" || rec.ApprovedDate != nil {
		t.Fatalf("reject kept approver identity: %+v", rec)
	}
}

func TestReversalDisabled(t *testing.T) {
	w, store, id := newFixture(t, false)
	transcribe(t, store, id)

	if _, err := w.Approve(context.Background(), id, "dr.smith@clinic.test"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Reject(context.Background(), id); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("want ErrAlreadyResolved, got %v", err)
	}
	if _, err := w.Approve(context.Background(), id, "someone.else@clinic.test"); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("want ErrAlreadyResolved, got %v", err)
	}
	rec, _ := store.GetByID(id)
	if rec.ApprovedBy != "dr.smith@clinic.test" {
		t.Fatalf("resolved record mutated: %+v", rec)
	}
}

func TestReversalEnabled(t *testing.T) {
	w, store, id := newFixture(t, true)
	transcribe(t, store, id)

	if _, err := w.Reject(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	rec, err := w.Approve(context.Background(), id, "dr.jones@clinic.test")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != models.ReviewStatusApproved || rec.ApprovedBy != "dr.jones@clinic.test" {
		t.Fatalf("re-review failed: %+v", rec)
	}
}

func TestReviewUnknownRecording(t *testing.T) {
	w, _, _ := newFixture(t, true)
	if _, err := w.Approve(context.Background(), "nope", "x@y.test"); !errors.Is(err, calls.ErrNotFound) {
		t.Fatalf("approve: want ErrNotFound, got %v", err)
	}
	if _, err := w.Reject(context.Background(), "nope"); !errors.Is(err, calls.ErrNotFound) {
		t.Fatalf("reject: want ErrNotFound, got %v", err)
	}
}
