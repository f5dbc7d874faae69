// Package approval is the review gate that marks a transcription as
// clinically accepted or rejected.
package approval

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/purrscribe/backend/internal/calls"
	"github.com/purrscribe/backend/internal/models"
)

var (
	// ErrNotTranscribed is returned when approving a recording that has no
	// transcription yet.
	ErrNotTranscribed = errors.New("recording has no transcription")
	// ErrAlreadyResolved is returned when reversal is disabled and the
	// recording has already been approved or rejected.
	ErrAlreadyResolved = errors.New("review already resolved")
)

// Workflow applies review decisions to call recordings.
type Workflow struct {
	store         *calls.Store
	allowReversal bool
	clock         func() time.Time
	logger        *zap.Logger
}

// NewWorkflow creates an approval workflow. allowReversal permits
// re-reviewing an already resolved recording.
func NewWorkflow(store *calls.Store, allowReversal bool, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		store:         store,
		allowReversal: allowReversal,
		clock:         time.Now,
		logger:        logger,
	}
}

// Approve marks the transcription approved, recording who approved it and
// when. Requires a transcription to exist. Fails with calls.ErrNotFound for
// unknown ids; the store is left unchanged on any failure.
func (w *Workflow) Approve(ctx context.Context, id, approver string) (models.CallRecording, error) {
	var stateErr error
	rec, err := w.store.UpdateByID(id, func(r *models.CallRecording) {
		if r.Transcription == "" {
			stateErr = ErrNotTranscribed
			return
		}
		if !w.allowReversal && resolved(r.Status) {
			stateErr = ErrAlreadyResolved
			return
		}
		now := w.clock()
		r.Status = models.ReviewStatusApproved
		r.ApprovedBy = approver
		r.ApprovedDate = &now
	})
	if err != nil {
		return models.CallRecording{}, err
	}
	if stateErr != nil {
		return models.CallRecording{}, stateErr
	}
	w.logger.Info("transcription approved", zap.String("recording_id", id), zap.String("approved_by", approver))
	return rec, nil
}

// Reject marks the transcription rejected and clears any approver identity
// and timestamp. Fails with calls.ErrNotFound for unknown ids.
func (w *Workflow) Reject(ctx context.Context, id string) (models.CallRecording, error) {
	var stateErr error
	rec, err := w.store.UpdateByID(id, func(r *models.CallRecording) {
		if !w.allowReversal && resolved(r.Status) {
			stateErr = ErrAlreadyResolved
			return
		}
		r.Status = models.ReviewStatusRejected
		r.ApprovedBy = ""
		r.ApprovedDate = nil
	})
	if err != nil {
		return models.CallRecording{}, err
	}
	if stateErr != nil {
		return models.CallRecording{}, stateErr
	}
	w.logger.Info("transcription rejected", zap.String("recording_id", id))
	return rec, nil
}

func resolved(status string) bool {
	return status == models.ReviewStatusApproved || status == models.ReviewStatusRejected
}
