// Package capture buffers microphone audio for the duration of a recording
// and renders it as a single WAV object when capture stops.
package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LINEAR16 mono, matching what the capture clients deliver.
const (
	SampleRate          = 16000
	Channels            = 1
	AudioBytesPerSample = 2
	AudioBitsPerSample  = 16
	audioPCMFormat      = 1 // WAV PCM format tag
)

var (
	// ErrPermissionDenied is returned when the platform refuses microphone access.
	ErrPermissionDenied = errors.New("microphone access denied")
	// ErrStopped is returned when pushing audio into a stopped handle.
	ErrStopped = errors.New("capture already stopped")
)

// Source is the platform microphone primitive. Acquire opens the exclusive
// input stream or fails with ErrPermissionDenied.
type Source interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is an open input stream. Close stops all underlying tracks and
// must be called exactly once per acquisition.
type Stream interface {
	Close() error
}

// Adapter acquires capture handles over a Source.
type Adapter struct {
	source Source
	clock  func() time.Time
	logger *zap.Logger
}

// NewAdapter creates a capture adapter over the given source.
func NewAdapter(source Source, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{source: source, clock: time.Now, logger: logger}
}

// Acquire opens the microphone and returns a buffering handle.
// Surfaces ErrPermissionDenied unchanged when the source refuses access.
func (a *Adapter) Acquire(ctx context.Context) (*Handle, error) {
	stream, err := a.source.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Handle{
		stream:  stream,
		started: a.clock(),
		clock:   a.clock,
		logger:  a.logger,
	}, nil
}

// Handle is a live capture. Incoming chunks are buffered internally and
// concatenated into one encoded object only at Stop.
type Handle struct {
	mu      sync.Mutex
	stream  Stream
	chunks  [][]byte
	started time.Time
	clock   func() time.Time
	stopped bool
	wav     []byte
	elapsed int
	logger  *zap.Logger
}

// Push appends a PCM chunk to the buffer. Empty chunks are ignored;
// pushes after Stop return ErrStopped.
func (h *Handle) Push(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return ErrStopped
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	h.chunks = append(h.chunks, buf)
	return nil
}

// Stop finalizes the capture: concatenates the buffered chunks into a single
// WAV object, reports elapsed seconds, and releases the underlying stream.
// The stream is closed exactly once; repeated Stop calls return the same result.
func (h *Handle) Stop() (wav []byte, elapsedSeconds int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return h.wav, h.elapsed, nil
	}
	h.stopped = true

	total := 0
	for _, c := range h.chunks {
		total += len(c)
	}
	pcm := make([]byte, 0, total)
	for _, c := range h.chunks {
		pcm = append(pcm, c...)
	}
	h.chunks = nil

	h.wav = encodeWAV(pcm)
	h.elapsed = int(h.clock().Sub(h.started).Seconds())

	if closeErr := h.stream.Close(); closeErr != nil {
		h.logger.Warn("capture stream close", zap.Error(closeErr))
	}
	h.stream = nil
	return h.wav, h.elapsed, nil
}

// encodeWAV wraps raw PCM in a standard RIFF/WAVE header.
func encodeWAV(pcm []byte) []byte {
	var buf bytes.Buffer
	bps := SampleRate * Channels * AudioBytesPerSample

	buf.Write([]byte("RIFF"))
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.Write([]byte("WAVE"))

	buf.Write([]byte("fmt "))
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(audioPCMFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(bps))
	binary.Write(&buf, binary.LittleEndian, uint16(AudioBytesPerSample*Channels))
	binary.Write(&buf, binary.LittleEndian, uint16(AudioBitsPerSample))

	buf.Write([]byte("data"))
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
