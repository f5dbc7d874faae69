package calls

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/purrscribe/backend/internal/capture"
)

// CallState is the lifecycle state of one owner call.
type CallState string

const (
	CallStateIdle       CallState = "idle"
	CallStateConnecting CallState = "connecting"
	CallStateActive     CallState = "active"
	CallStateCompleted  CallState = "completed"
	CallStateFailed     CallState = "failed"
)

// ErrCallNotIdle is returned when StartCall is invoked on a session that has
// already started.
var ErrCallNotIdle = errors.New("call already started")

// CapturedAudio is the completed-capture handoff from the session to its
// subscriber (normally the persistence layer).
type CapturedAudio struct {
	WAV      []byte
	Duration int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithConnectDelay sets the simulated connection delay.
func WithConnectDelay(d time.Duration) SessionOption {
	return func(s *Session) { s.connectDelay = d }
}

// WithTickInterval sets the duration counter interval.
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *Session) { s.tickInterval = d }
}

// Session drives one phone-call interaction:
// idle → connecting → active → {completed, failed}, with an orthogonal
// recording sub-state reachable only while active. The duration counter and
// any in-flight capture are always torn down when the session leaves active.
type Session struct {
	mu           sync.Mutex
	state        CallState
	recording    bool
	duration     int
	adapter      *capture.Adapter
	handle       *capture.Handle
	onRecorded   func(CapturedAudio)
	connectDelay time.Duration
	tickInterval time.Duration
	stopTick     chan struct{}
	logger       *zap.Logger
}

// NewSession creates an idle call session. onRecorded receives each
// completed capture; it is invoked after the session lock is released.
func NewSession(adapter *capture.Adapter, onRecorded func(CapturedAudio), logger *zap.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		state:        CallStateIdle,
		adapter:      adapter,
		onRecorded:   onRecorded,
		connectDelay: 1500 * time.Millisecond,
		tickInterval: time.Second,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current call state.
func (s *Session) State() CallState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Duration returns elapsed call seconds.
func (s *Session) Duration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Recording reports whether audio capture is in progress.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// StartCall transitions idle → connecting, waits out the simulated
// connection delay, then goes active and starts the duration counter.
// A cancelled context during connection fails the call.
func (s *Session) StartCall(ctx context.Context) error {
	s.mu.Lock()
	if s.state != CallStateIdle {
		s.mu.Unlock()
		return ErrCallNotIdle
	}
	s.state = CallStateConnecting
	s.mu.Unlock()

	select {
	case <-time.After(s.connectDelay):
	case <-ctx.Done():
		s.fail()
		return ctx.Err()
	}

	s.mu.Lock()
	if s.state != CallStateConnecting {
		// ended while connecting
		s.mu.Unlock()
		return nil
	}
	s.state = CallStateActive
	s.stopTick = make(chan struct{})
	stop := s.stopTick
	s.mu.Unlock()

	go s.runTicker(stop)
	s.logger.Info("call active")
	return nil
}

func (s *Session) runTicker(stop chan struct{}) {
	t := time.NewTicker(s.tickInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.tick()
		case <-stop:
			return
		}
	}
}

// tick advances the duration counter; counts only while active.
func (s *Session) tick() {
	s.mu.Lock()
	if s.state == CallStateActive {
		s.duration++
	}
	s.mu.Unlock()
}

// ToggleRecording starts or stops audio capture. A no-op outside active.
// Permission denial surfaces to the caller and leaves the sub-state unchanged.
func (s *Session) ToggleRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.state != CallStateActive {
		s.mu.Unlock()
		return nil
	}
	if s.recording {
		rec, ok := s.finishCaptureLocked()
		s.mu.Unlock()
		if ok {
			s.emit(rec)
		}
		return nil
	}
	s.mu.Unlock()

	handle, err := s.adapter.Acquire(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state != CallStateActive {
		// call ended during acquisition; release immediately
		s.mu.Unlock()
		_, _, _ = handle.Stop()
		return nil
	}
	s.handle = handle
	s.recording = true
	s.mu.Unlock()
	return nil
}

// PushAudio feeds a PCM chunk into the in-progress capture. Dropped when
// not recording.
func (s *Session) PushAudio(chunk []byte) {
	s.mu.Lock()
	h := s.handle
	rec := s.recording
	s.mu.Unlock()
	if rec && h != nil {
		_ = h.Push(chunk)
	}
}

// EndCall stops the duration counter, finalizes any in-progress capture,
// and completes the call. Valid from active or connecting; otherwise a no-op.
func (s *Session) EndCall() {
	s.mu.Lock()
	if s.state != CallStateActive && s.state != CallStateConnecting {
		s.mu.Unlock()
		return
	}
	s.stopTickerLocked()
	rec, ok := s.finishCaptureLocked()
	s.state = CallStateCompleted
	s.mu.Unlock()
	if ok {
		s.emit(rec)
	}
	s.logger.Info("call completed")
}

// fail tears down timers and capture and marks the call failed.
func (s *Session) fail() {
	s.mu.Lock()
	s.stopTickerLocked()
	rec, ok := s.finishCaptureLocked()
	s.state = CallStateFailed
	s.mu.Unlock()
	if ok {
		s.emit(rec)
	}
	s.logger.Warn("call failed")
}

func (s *Session) stopTickerLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

// finishCaptureLocked stops the capture handle and returns the completed
// audio. Caller holds the lock and emits after releasing it.
func (s *Session) finishCaptureLocked() (CapturedAudio, bool) {
	if !s.recording || s.handle == nil {
		return CapturedAudio{}, false
	}
	wav, _, err := s.handle.Stop()
	s.recording = false
	s.handle = nil
	if err != nil {
		s.logger.Warn("stop capture", zap.Error(err))
		return CapturedAudio{}, false
	}
	return CapturedAudio{WAV: wav, Duration: s.duration}, true
}

func (s *Session) emit(rec CapturedAudio) {
	if s.onRecorded != nil {
		s.onRecorded(rec)
	}
}
