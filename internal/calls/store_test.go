package calls

import (
	"context"
	"errors"
	"testing"

	"github.com/purrscribe/backend/internal/models"
)

func newTestStore() (*Store, *MemoryAudioStore) {
	audio := NewMemoryAudioStore()
	return NewStore(audio, nil), audio
}

func TestCreateAssignsIDAndUploadsAudio(t *testing.T) {
	store, audio := newTestStore()

	rec, err := store.Create(context.Background(), models.CallMetadata{PetName: "Max", Duration: 30}, []byte("wav-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" {
		t.Fatal("expected generated id")
	}
	if rec.AudioURL != "memory://"+rec.ID {
		t.Fatalf("audio url %q", rec.AudioURL)
	}
	if rec.Status != "" {
		t.Fatalf("status should be unset before transcription, got %q", rec.Status)
	}
	if rec.Date.IsZero() {
		t.Fatal("expected date")
	}
	if audio.Len() != 1 {
		t.Fatalf("audio store holds %d blobs, want 1", audio.Len())
	}
}

func TestCreateWithoutAudio(t *testing.T) {
	store, audio := newTestStore()
	rec, err := store.Create(context.Background(), models.CallMetadata{PetName: "Bella"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.AudioURL != "" {
		t.Fatalf("audio url should be empty, got %q", rec.AudioURL)
	}
	if audio.Len() != 0 {
		t.Fatalf("audio store holds %d blobs, want 0", audio.Len())
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	store, _ := newTestStore()
	names := []string{"Max", "Bella", "Charlie"}
	for _, n := range names {
		if _, err := store.Create(context.Background(), models.CallMetadata{PetName: n}, nil); err != nil {
			t.Fatal(err)
		}
	}
	list := store.List()
	if len(list) != 3 {
		t.Fatalf("len %d, want 3", len(list))
	}
	for i, n := range names {
		if list[i].PetName != n {
			t.Fatalf("position %d: got %q, want %q", i, list[i].PetName, n)
		}
	}
}

func TestListByPet(t *testing.T) {
	store, _ := newTestStore()
	store.Create(context.Background(), models.CallMetadata{PetID: "p1", PetName: "Max"}, nil)
	store.Create(context.Background(), models.CallMetadata{PetID: "p2", PetName: "Bella"}, nil)
	store.Create(context.Background(), models.CallMetadata{PetID: "p1", PetName: "Max"}, nil)

	list := store.ListByPet("p1")
	if len(list) != 2 {
		t.Fatalf("len %d, want 2", len(list))
	}
	for _, rec := range list {
		if rec.PetID != "p1" {
			t.Fatalf("unexpected pet %q", rec.PetID)
		}
	}
	if got := store.ListByPet("missing"); len(got) != 0 {
		t.Fatalf("unknown pet returned %d recordings", len(got))
	}
}

func TestGetByIDUnknown(t *testing.T) {
	store, _ := newTestStore()
	if _, err := store.GetByID("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdateByIDMutatesCopy(t *testing.T) {
	store, _ := newTestStore()
	rec, _ := store.Create(context.Background(), models.CallMetadata{PetName: "Luna"}, nil)

	updated, err := store.UpdateByID(rec.ID, func(r *models.CallRecording) {
		r.Transcription = "text"
		r.Status = models.ReviewStatusPending
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Transcription != "text" || updated.Status != models.ReviewStatusPending {
		t.Fatalf("update not applied: %+v", updated)
	}

	stored, _ := store.GetByID(rec.ID)
	if stored.Transcription != "text" {
		t.Fatal("update not visible through GetByID")
	}

	if _, err := store.UpdateByID("nope", func(r *models.CallRecording) {}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteReleasesAudioExactlyOnce(t *testing.T) {
	store, audio := newTestStore()
	rec, _ := store.Create(context.Background(), models.CallMetadata{PetName: "Oliver"}, []byte("wav"))

	if err := store.DeleteByID(context.Background(), rec.ID); err != nil {
		t.Fatal(err)
	}
	if audio.Len() != 0 {
		t.Fatalf("audio blob not released, %d left", audio.Len())
	}
	if store.Len() != 0 {
		t.Fatalf("store still holds %d recordings", store.Len())
	}

	// second delete reports not found and never touches the audio store again
	if err := store.DeleteByID(context.Background(), rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteKeepsOrderOfRemaining(t *testing.T) {
	store, _ := newTestStore()
	a, _ := store.Create(context.Background(), models.CallMetadata{PetName: "A"}, nil)
	b, _ := store.Create(context.Background(), models.CallMetadata{PetName: "B"}, nil)
	c, _ := store.Create(context.Background(), models.CallMetadata{PetName: "C"}, nil)
	_ = a
	_ = c

	if err := store.DeleteByID(context.Background(), b.ID); err != nil {
		t.Fatal(err)
	}
	list := store.List()
	if len(list) != 2 || list[0].PetName != "A" || list[1].PetName != "C" {
		t.Fatalf("unexpected order after delete: %+v", list)
	}
}
