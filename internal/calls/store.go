// Package calls holds the call recording store, the live call session state
// machine, and the HTTP/WebSocket surfaces over them.
package calls

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/purrscribe/backend/internal/models"
)

// ErrNotFound is returned when no recording exists for the given id.
var ErrNotFound = errors.New("call recording not found")

// AudioStore persists captured audio blobs and releases them on delete.
type AudioStore interface {
	// Put stores the WAV object for a recording and returns its URL and
	// release key.
	Put(ctx context.Context, recordingID string, wav []byte) (url, key string, err error)
	// Delete releases the stored object. Called at most once per key.
	Delete(ctx context.Context, key string) error
}

// Store is the in-memory collection of call recordings. Recordings live for
// the lifetime of the process; nothing is persisted to disk. All mutations
// go through Create/UpdateByID/DeleteByID and are atomic per id — readers
// always observe a whole record, never a partial mutation.
type Store struct {
	mu        sync.RWMutex
	byID      map[string]*models.CallRecording
	order     []string
	audioKeys map[string]string
	audio     AudioStore
	clock     func() time.Time
	logger    *zap.Logger
}

// NewStore creates a call recording store backed by the given audio store.
func NewStore(audio AudioStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		byID:      make(map[string]*models.CallRecording),
		order:     nil,
		audioKeys: make(map[string]string),
		audio:     audio,
		clock:     time.Now,
		logger:    logger,
	}
}

// Create stores a new recording with a fresh id, uploading the captured
// audio first. Status stays unset until a transcription exists.
func (s *Store) Create(ctx context.Context, meta models.CallMetadata, wav []byte) (models.CallRecording, error) {
	id := uuid.New().String()

	var url, key string
	if len(wav) > 0 && s.audio != nil {
		var err error
		url, key, err = s.audio.Put(ctx, id, wav)
		if err != nil {
			return models.CallRecording{}, err
		}
	}

	rec := &models.CallRecording{
		ID:         id,
		PetID:      meta.PetID,
		PetName:    meta.PetName,
		OwnerID:    meta.OwnerID,
		OwnerName:  meta.OwnerName,
		ClinicID:   meta.ClinicID,
		ClinicName: meta.ClinicName,
		VisitType:  meta.VisitType,
		Duration:   meta.Duration,
		Date:       s.clock(),
		AudioURL:   url,
	}

	s.mu.Lock()
	s.byID[id] = rec
	s.order = append(s.order, id)
	if key != "" {
		s.audioKeys[id] = key
	}
	s.mu.Unlock()

	s.logger.Info("call recording saved",
		zap.String("recording_id", id),
		zap.String("pet_name", meta.PetName),
		zap.Int("duration", meta.Duration),
	)
	return *rec, nil
}

// List returns all recordings in insertion order.
func (s *Store) List() []models.CallRecording {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CallRecording, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

// ListByPet returns recordings for one pet, in insertion order.
func (s *Store) ListByPet(petID string) []models.CallRecording {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.CallRecording
	for _, id := range s.order {
		if rec := s.byID[id]; rec.PetID == petID {
			out = append(out, *rec)
		}
	}
	return out
}

// GetByID returns a copy of the recording or ErrNotFound.
func (s *Store) GetByID(id string) (models.CallRecording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return models.CallRecording{}, ErrNotFound
	}
	return *rec, nil
}

// UpdateByID applies mutate to the stored record under the store lock and
// returns the updated copy. The mutator sees the live record; it must not
// retain the pointer past the call.
func (s *Store) UpdateByID(id string, mutate func(*models.CallRecording)) (models.CallRecording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return models.CallRecording{}, ErrNotFound
	}
	mutate(rec)
	return *rec, nil
}

// DeleteByID removes the recording and releases its audio object exactly once.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	key := s.audioKeys[id]
	delete(s.audioKeys, id)
	s.mu.Unlock()

	if key != "" && s.audio != nil {
		if err := s.audio.Delete(ctx, key); err != nil {
			s.logger.Warn("release call audio", zap.Error(err), zap.String("recording_id", id))
		}
	}
	s.logger.Info("call recording deleted", zap.String("recording_id", id))
	return nil
}

// Len returns the number of stored recordings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
