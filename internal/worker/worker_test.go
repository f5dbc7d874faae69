package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/purrscribe/backend/internal/calls"
	"github.com/purrscribe/backend/internal/models"
	"github.com/purrscribe/backend/internal/transcription"
	"github.com/purrscribe/backend/pkg/queue"
)

func newProcessor(t *testing.T) (*TranscriptionProcessor, *calls.Store) {
	t.Helper()
	store := calls.NewStore(calls.NewMemoryAudioStore(), nil)
	pipeline := transcription.NewPipeline(store, 0, 0, nil)
	return NewTranscriptionProcessor(pipeline, nil, nil), store
}

func job(t *testing.T, jobType queue.JobType, recordingID string) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.TranscriptionPayload{RecordingID: recordingID})
	if err != nil {
		t.Fatal(err)
	}
	return &queue.Job{ID: "job-1", Type: jobType, Payload: payload}
}

func TestProcessTranscribeJob(t *testing.T) {
	p, store := newProcessor(t)
	rec, err := store.Create(context.Background(), models.CallMetadata{PetName: "Max"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Process(context.Background(), job(t, queue.JobTypeTranscribe, rec.ID)); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetByID(rec.ID)
	if got.Transcription == "" || got.Status != models.ReviewStatusPending {
		t.Fatalf("job did not transcribe: %+v", got)
	}
}

func TestProcessSummarizeJob(t *testing.T) {
	p, store := newProcessor(t)
	rec, err := store.Create(context.Background(), models.CallMetadata{PetName: "Bella"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Process(context.Background(), job(t, queue.JobTypeSummarize, rec.ID)); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetByID(rec.ID)
	if got.Summary == "" || got.Transcription == "" {
		t.Fatalf("job did not summarize: %+v", got)
	}
}

func TestProcessDropsJobForMissingRecording(t *testing.T) {
	p, _ := newProcessor(t)
	// store is process-local, a missing recording never appears later
	if err := p.Process(context.Background(), job(t, queue.JobTypeTranscribe, "gone")); err != nil {
		t.Fatalf("missing recording should not be retried: %v", err)
	}
}

func TestProcessUnknownJobType(t *testing.T) {
	p, _ := newProcessor(t)
	if err := p.Process(context.Background(), job(t, queue.JobType("compress"), "x")); err == nil {
		t.Fatal("unknown job type should error")
	}
}
