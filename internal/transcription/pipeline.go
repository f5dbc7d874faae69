// Package transcription enriches call recordings with transcripts and
// summaries. Enrichment only ever adds fields; it never clears or rewrites
// an artifact that is already present.
package transcription

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/purrscribe/backend/internal/calls"
	"github.com/purrscribe/backend/internal/models"
)

// Pipeline runs the (simulated) speech engine against the call store.
// Delays stand in for provider processing time; once an operation starts it
// runs to completion — there is no cancellation path.
type Pipeline struct {
	store           *calls.Store
	transcribeDelay time.Duration
	summarizeDelay  time.Duration
	logger          *zap.Logger
}

// NewPipeline creates a transcription pipeline over the call store.
func NewPipeline(store *calls.Store, transcribeDelay, summarizeDelay time.Duration, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		store:           store,
		transcribeDelay: transcribeDelay,
		summarizeDelay:  summarizeDelay,
		logger:          logger,
	}
}

// Transcribe attaches a transcript to the recording. Idempotent: a recording
// that already has one is returned unchanged. The first transcription also
// moves the review status to pending. Fails with calls.ErrNotFound when the
// id is unknown.
func (p *Pipeline) Transcribe(ctx context.Context, id string) (models.CallRecording, error) {
	rec, err := p.store.GetByID(id)
	if err != nil {
		return models.CallRecording{}, err
	}
	if rec.Transcription != "" {
		return rec, nil
	}

	p.wait(p.transcribeDelay)
	text := TranscriptFor(rec.PetName)

	updated, err := p.store.UpdateByID(id, func(r *models.CallRecording) {
		if r.Transcription != "" {
			return
		}
		r.Transcription = text
		if r.Status == "" {
			r.Status = models.ReviewStatusPending
		}
	})
	if err != nil {
		return models.CallRecording{}, err
	}
	p.logger.Info("recording transcribed", zap.String("recording_id", id))
	return updated, nil
}

// Summarize attaches a summary. Idempotent. A recording without a transcript
// is transcribed first, so a summary never exists without its transcript.
// Fails with calls.ErrNotFound when the id is unknown.
func (p *Pipeline) Summarize(ctx context.Context, id string) (models.CallRecording, error) {
	rec, err := p.store.GetByID(id)
	if err != nil {
		return models.CallRecording{}, err
	}
	if rec.Summary != "" {
		return rec, nil
	}
	if rec.Transcription == "" {
		if rec, err = p.Transcribe(ctx, id); err != nil {
			return models.CallRecording{}, err
		}
	}

	p.wait(p.summarizeDelay)
	text := SummaryFor(rec.PetName)

	updated, err := p.store.UpdateByID(id, func(r *models.CallRecording) {
		if r.Summary == "" {
			r.Summary = text
		}
	})
	if err != nil {
		return models.CallRecording{}, err
	}
	p.logger.Info("recording summarized", zap.String("recording_id", id))
	return updated, nil
}

func (p *Pipeline) wait(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
