package calls

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/purrscribe/backend/pkg/storage"
)

// S3AudioStore keeps call audio in the configured S3 audio bucket.
type S3AudioStore struct {
	s3 *storage.S3
}

// NewS3AudioStore creates an audio store over the S3 client.
func NewS3AudioStore(s3 *storage.S3) *S3AudioStore {
	return &S3AudioStore{s3: s3}
}

// Put uploads the WAV object under call-audio/{recording_id}.wav.
func (a *S3AudioStore) Put(ctx context.Context, recordingID string, wav []byte) (string, string, error) {
	key := storage.AudioKey(recordingID)
	url, err := a.s3.Upload(ctx, a.s3.AudioBucket(), key, "audio/wav", bytes.NewReader(wav), int64(len(wav)))
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

// Delete removes the audio object from the bucket.
func (a *S3AudioStore) Delete(ctx context.Context, key string) error {
	return a.s3.DeleteObject(ctx, a.s3.AudioBucket(), key)
}

// DownloadURL returns a presigned GET URL for the audio object.
func (a *S3AudioStore) DownloadURL(ctx context.Context, key string) (string, error) {
	return a.s3.GeneratePresignedDownloadURL(ctx, a.s3.AudioBucket(), key, a.s3.PresignExpire())
}

// audioKeyFor returns the S3 object key for a recording's audio.
func audioKeyFor(recordingID string) string {
	return storage.AudioKey(recordingID)
}

// MemoryAudioStore holds audio blobs in process memory. Used when S3 is not
// configured, and in tests.
type MemoryAudioStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryAudioStore creates an empty in-memory audio store.
func NewMemoryAudioStore() *MemoryAudioStore {
	return &MemoryAudioStore{blobs: make(map[string][]byte)}
}

// Put stores the blob keyed by recording id.
func (m *MemoryAudioStore) Put(ctx context.Context, recordingID string, wav []byte) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(wav))
	copy(buf, wav)
	m.blobs[recordingID] = buf
	return "memory://" + recordingID, recordingID, nil
}

// Delete releases the blob; deleting an unknown key is an error so double
// releases surface.
func (m *MemoryAudioStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return errors.New("audio object not found: " + key)
	}
	delete(m.blobs, key)
	return nil
}

// Get returns the stored blob, if any.
func (m *MemoryAudioStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	return b, ok
}

// Len returns the number of stored blobs.
func (m *MemoryAudioStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
