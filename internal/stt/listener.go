package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pkglog "morning/internal/log"
)

// ErrUnsupported is returned when no speech-to-text capability is configured.
var ErrUnsupported = errors.New("live transcription unavailable")

const (
	StatusUnsupported = "Live transcription unavailable. Configure a speech-to-text provider (STT_PROVIDER) to enable it."
	StatusListening   = "Listening…"
	StatusIdle        = "Microphone idle."
)

// State of a Listener.
type State int

const (
	StateIdle State = iota
	StateActive
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	default:
		return "idle"
	}
}

// Listener drives a Stream for one session. While the user wants to listen
// (Active) an unexpected end of the stream restarts it; once Stop has been
// requested the next end settles the listener in Idle.
//
// Stream methods are never called with mu held, so a stream may invoke its
// handlers synchronously.
type Listener struct {
	stream  Stream
	onFinal func(text string)

	mu       sync.Mutex
	state    State
	ctx      context.Context
	status   string
	isError  bool
	interim  string
	restarts int
}

// NewListener creates a listener. stream may be nil, in which case Start
// reports ErrUnsupported.
func NewListener(stream Stream, onFinal func(text string)) *Listener {
	return &Listener{
		stream:  stream,
		onFinal: onFinal,
		status:  StatusIdle,
	}
}

// Start begins listening. It is a no-op while already listening, and cancels
// a pending stop.
func (l *Listener) Start(ctx context.Context) error {
	if l.stream == nil {
		l.setStatus(StatusUnsupported, true)
		return ErrUnsupported
	}

	l.mu.Lock()
	switch l.state {
	case StateActive:
		l.mu.Unlock()
		return nil
	case StateStopping:
		// The pending end event will now restart the stream.
		l.state = StateActive
		l.status, l.isError = StatusListening, false
		l.mu.Unlock()
		return nil
	}
	l.state = StateActive
	l.ctx = context.WithoutCancel(ctx)
	streamCtx := l.ctx
	l.mu.Unlock()

	if err := l.stream.Start(streamCtx, l.handlers()); err != nil {
		l.mu.Lock()
		l.state = StateIdle
		l.status, l.isError = fmt.Sprintf("Listening issue: %v", err), true
		l.mu.Unlock()
		return fmt.Errorf("start stream: %w", err)
	}

	l.setStatus(StatusListening, false)
	return nil
}

// Stop requests the stream to stop. The listener becomes Idle when the
// stream reports its end.
func (l *Listener) Stop() error {
	l.mu.Lock()
	if l.state != StateActive {
		l.mu.Unlock()
		return nil
	}
	l.state = StateStopping
	l.mu.Unlock()

	if err := l.stream.Stop(); err != nil {
		return fmt.Errorf("stop stream: %w", err)
	}
	return nil
}

func (l *Listener) handlers() Handlers {
	return Handlers{
		OnFinal:   l.handleFinal,
		OnInterim: l.handleInterim,
		OnError:   l.handleError,
		OnEnd:     l.handleEnd,
	}
}

func (l *Listener) handleFinal(r Result) {
	text := strings.TrimSpace(r.Transcript)
	if text == "" {
		return
	}
	l.mu.Lock()
	l.interim = ""
	l.mu.Unlock()

	if l.onFinal != nil {
		l.onFinal(text)
	}
}

func (l *Listener) handleInterim(text string) {
	l.mu.Lock()
	l.interim = strings.TrimSpace(text)
	l.mu.Unlock()
}

func (l *Listener) handleError(err error) {
	l.setStatus(fmt.Sprintf("Listening issue: %v", err), true)
}

func (l *Listener) handleEnd() {
	l.mu.Lock()
	restart := l.state == StateActive
	if restart {
		l.restarts++
	} else {
		l.state = StateIdle
		l.status, l.isError = StatusIdle, false
	}
	ctx := l.ctx
	l.mu.Unlock()

	if !restart {
		return
	}

	logger := pkglog.Ctx(ctx)
	logger.Debug().Str(pkglog.FieldComponent, "stt.listener").Msg("stream ended while listening, restarting")
	err := l.stream.Start(ctx, l.handlers())

	l.mu.Lock()
	if err != nil {
		l.state = StateIdle
		l.status, l.isError = fmt.Sprintf("Listening issue: %v", err), true
	}
	// Stop may have been requested while the stream was restarting.
	stopNow := err == nil && l.state == StateStopping
	l.mu.Unlock()

	if stopNow {
		_ = l.stream.Stop()
	}
}

func (l *Listener) setStatus(status string, isError bool) {
	l.mu.Lock()
	l.status, l.isError = status, isError
	l.mu.Unlock()
}

// SetStatus overrides the status line, e.g. after the transcript is cleared.
func (l *Listener) SetStatus(status string) {
	l.setStatus(status, false)
}

// Snapshot is a point-in-time view of a Listener.
type Snapshot struct {
	State    string `json:"state"`
	Status   string `json:"status"`
	IsError  bool   `json:"is_error"`
	Interim  string `json:"interim,omitempty"`
	Restarts int    `json:"restarts"`
}

func (l *Listener) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		State:    l.state.String(),
		Status:   l.status,
		IsError:  l.isError,
		Interim:  l.interim,
		Restarts: l.restarts,
	}
}

// State returns the current state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
