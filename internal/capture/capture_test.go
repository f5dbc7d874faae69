package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

type fakeStream struct {
	closes int
}

func (s *fakeStream) Close() error {
	s.closes++
	if s.closes > 1 {
		return errors.New("closed twice")
	}
	return nil
}

type fakeSource struct {
	stream *fakeStream
	err    error
}

func (f *fakeSource) Acquire(ctx context.Context) (Stream, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func TestAcquireDeniedSurfacesError(t *testing.T) {
	adapter := NewAdapter(&fakeSource{err: ErrPermissionDenied}, nil)
	if _, err := adapter.Acquire(context.Background()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("want ErrPermissionDenied, got %v", err)
	}
}

func TestStopClosesStreamOnce(t *testing.T) {
	stream := &fakeStream{}
	adapter := NewAdapter(&fakeSource{stream: stream}, nil)
	h, err := adapter.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	first, _, err := h.Stop()
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := h.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if stream.closes != 1 {
		t.Fatalf("stream closed %d times, want 1", stream.closes)
	}
	if len(first) != len(second) {
		t.Fatalf("repeated Stop returned different results: %d vs %d bytes", len(first), len(second))
	}
}

func TestPushAfterStop(t *testing.T) {
	adapter := NewAdapter(&fakeSource{stream: &fakeStream{}}, nil)
	h, _ := adapter.Acquire(context.Background())
	if _, _, err := h.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := h.Push([]byte{1, 2}); !errors.Is(err, ErrStopped) {
		t.Fatalf("want ErrStopped, got %v", err)
	}
}

func TestStopConcatenatesChunksIntoWAV(t *testing.T) {
	adapter := NewAdapter(&fakeSource{stream: &fakeStream{}}, nil)
	h, _ := adapter.Acquire(context.Background())

	if err := h.Push([]byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	if err := h.Push(nil); err != nil { // empty chunks are dropped
		t.Fatal(err)
	}
	if err := h.Push([]byte{5, 6}); err != nil {
		t.Fatal(err)
	}

	wav, _, err := h.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if len(wav) != 44+6 {
		t.Fatalf("wav length %d, want %d", len(wav), 44+6)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("bad RIFF header: %q %q", wav[0:4], wav[8:12])
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != SampleRate {
		t.Fatalf("sample rate %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != Channels {
		t.Fatalf("channels %d, want %d", got, Channels)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != 6 {
		t.Fatalf("data size %d, want 6", got)
	}
	if wav[44] != 1 || wav[49] != 6 {
		t.Fatalf("pcm payload out of order: % x", wav[44:])
	}
}

func TestStopReportsElapsedSeconds(t *testing.T) {
	adapter := NewAdapter(&fakeSource{stream: &fakeStream{}}, nil)
	now := time.Unix(1000, 0)
	adapter.clock = func() time.Time { return now }

	h, _ := adapter.Acquire(context.Background())
	now = now.Add(42 * time.Second)
	h.clock = adapter.clock

	_, elapsed, err := h.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if elapsed != 42 {
		t.Fatalf("elapsed %d, want 42", elapsed)
	}
}

func TestRemoteStreamSingleClose(t *testing.T) {
	s, err := RemoteSource{}.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err == nil {
		t.Fatal("second close should error")
	}
}
