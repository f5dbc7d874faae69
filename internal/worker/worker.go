package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/purrscribe/backend/internal/calls"
	"github.com/purrscribe/backend/internal/transcription"
	"github.com/purrscribe/backend/pkg/queue"
)

// TranscriptionProcessor processes transcription and summary jobs against the
// in-process recording store.
type TranscriptionProcessor struct {
	pipeline *transcription.Pipeline
	queue    *queue.Queue
	logger   *zap.Logger
}

// NewTranscriptionProcessor creates a transcription job processor.
func NewTranscriptionProcessor(pipeline *transcription.Pipeline, q *queue.Queue, logger *zap.Logger) *TranscriptionProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptionProcessor{pipeline: pipeline, queue: q, logger: logger}
}

// Process executes one job. A missing recording is not retryable: the store
// is process-local, so a recording deleted (or created in another process)
// will never appear.
func (p *TranscriptionProcessor) Process(ctx context.Context, job *queue.Job) error {
	var payload queue.TranscriptionPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	var err error
	switch job.Type {
	case queue.JobTypeTranscribe:
		_, err = p.pipeline.Transcribe(ctx, payload.RecordingID)
	case queue.JobTypeSummarize:
		_, err = p.pipeline.Summarize(ctx, payload.RecordingID)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	if errors.Is(err, calls.ErrNotFound) {
		p.logger.Warn("recording gone, dropping job",
			zap.String("job_id", job.ID),
			zap.String("recording_id", payload.RecordingID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", job.Type, payload.RecordingID, err)
	}

	p.logger.Info("job completed",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("recording_id", payload.RecordingID),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *TranscriptionProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("transcription worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
