package transcription

import (
	"context"
	"errors"
	"testing"

	"github.com/purrscribe/backend/internal/calls"
	"github.com/purrscribe/backend/internal/models"
)

func newTestPipeline(t *testing.T) (*Pipeline, *calls.Store) {
	t.Helper()
	store := calls.NewStore(calls.NewMemoryAudioStore(), nil)
	return NewPipeline(store, 0, 0, nil), store
}

func mustCreate(t *testing.T, store *calls.Store, petName string) models.CallRecording {
	t.Helper()
	rec, err := store.Create(context.Background(), models.CallMetadata{PetName: petName}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestTranscribeSetsTranscriptAndPendingStatus(t *testing.T) {
	p, store := newTestPipeline(t)
	rec := mustCreate(t, store, "Max")

	got, err := p.Transcribe(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Transcription != TranscriptFor("Max") {
		t.Fatalf("unexpected transcript: %q", got.Transcription)
	}
	if got.Status != models.ReviewStatusPending {
		t.Fatalf("status %q, want pending", got.Status)
	}
	if got.Summary != "" {
		t.Fatalf("transcribe must not produce a summary, got %q", got.Summary)
	}
}

func TestTranscribeIsIdempotent(t *testing.T) {
	p, store := newTestPipeline(t)
	rec := mustCreate(t, store, "Bella")

	first, err := p.Transcribe(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Transcribe(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first.Transcription != second.Transcription {
		t.Fatal("repeat transcribe changed the transcript")
	}
	if second.Status != models.ReviewStatusPending {
		t.Fatalf("status %q after repeat", second.Status)
	}
}

func TestTranscribeUnknownPetFallsBack(t *testing.T) {
	p, store := newTestPipeline(t)
	rec := mustCreate(t, store, "Rex")

	got, err := p.Transcribe(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Transcription != genericTranscript {
		t.Fatalf("want generic transcript, got %q", got.Transcription)
	}
}

func TestSummarizeCascadesIntoTranscribe(t *testing.T) {
	p, store := newTestPipeline(t)
	rec := mustCreate(t, store, "Charlie")

	got, err := p.Summarize(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Summary != SummaryFor("Charlie") {
		t.Fatalf("unexpected summary: %q", got.Summary)
	}
	if got.Transcription != TranscriptFor("Charlie") {
		t.Fatal("summary exists without its transcript")
	}
	if got.Status != models.ReviewStatusPending {
		t.Fatalf("status %q, want pending", got.Status)
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	p, store := newTestPipeline(t)
	rec := mustCreate(t, store, "Luna")

	first, err := p.Summarize(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Summarize(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first.Summary != second.Summary || first.Transcription != second.Transcription {
		t.Fatal("repeat summarize changed artifacts")
	}
}

func TestEnrichUnknownRecording(t *testing.T) {
	p, _ := newTestPipeline(t)
	if _, err := p.Transcribe(context.Background(), "nope"); !errors.Is(err, calls.ErrNotFound) {
		t.Fatalf("transcribe: want ErrNotFound, got %v", err)
	}
	if _, err := p.Summarize(context.Background(), "nope"); !errors.Is(err, calls.ErrNotFound) {
		t.Fatalf("summarize: want ErrNotFound, got %v", err)
	}
}

func TestTemplatesCoverKnownPets(t *testing.T) {
	for _, name := range []string{"Max", "Bella", "Charlie", "Luna", "Oliver", "Buddy"} {
		if TranscriptFor(name) == genericTranscript {
			t.Errorf("no transcript template for %s", name)
		}
		if SummaryFor(name) == genericSummary {
			t.Errorf("no summary template for %s", name)
		}
	}
}
