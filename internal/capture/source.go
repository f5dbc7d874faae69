package capture

import (
	"context"
	"errors"
	"sync"
)

// RemoteSource is a Source whose access was already granted on the client
// side; the audio itself arrives out of band (pushed over the call gateway).
// Close tracks release so a stream is never stopped twice.
type RemoteSource struct{}

// Acquire always grants and returns a release-tracking stream.
func (RemoteSource) Acquire(ctx context.Context) (Stream, error) {
	return &remoteStream{}, nil
}

type remoteStream struct {
	mu     sync.Mutex
	closed bool
}

func (s *remoteStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream already closed")
	}
	s.closed = true
	return nil
}
