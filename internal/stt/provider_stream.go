package stt

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	pkglog "morning/internal/log"
)

var (
	ErrStreamRunning    = errors.New("stream already running")
	ErrStreamNotRunning = errors.New("stream is not running")
	ErrBacklogFull      = errors.New("too many audio segments waiting")
)

const segmentBacklog = 16

// ProviderStream turns a batch Provider into a Stream. Audio segments are
// handed in with Feed and each transcription becomes a final result. With no
// segment for idleTimeout the stream ends on its own.
type ProviderStream struct {
	provider    Provider
	idleTimeout time.Duration
	segments    chan string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewProviderStream(provider Provider, idleTimeout time.Duration) *ProviderStream {
	return &ProviderStream{
		provider:    provider,
		idleTimeout: idleTimeout,
		segments:    make(chan string, segmentBacklog),
	}
}

func (s *ProviderStream) Start(ctx context.Context, h Handlers) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrStreamRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel

	go s.run(ctx, h)
	return nil
}

func (s *ProviderStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running && s.cancel != nil {
		s.cancel()
	}
	return nil
}

// Feed queues an audio segment file for transcription. The file is removed
// once it has been processed, or when the stream ends before reaching it.
func (s *ProviderStream) Feed(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrStreamNotRunning
	}
	select {
	case s.segments <- path:
		return nil
	default:
		return ErrBacklogFull
	}
}

func (s *ProviderStream) run(ctx context.Context, h Handlers) {
	logger := pkglog.Ctx(ctx).With().Str(pkglog.FieldComponent, "stt.stream").Str("provider", s.provider.Name()).Logger()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.cancel()
		dropped := s.drain(logger)
		s.mu.Unlock()

		if dropped > 0 {
			logger.Debug().Int("dropped", dropped).Msg("discarded audio segments left in the queue")
		}
		if h.OnEnd != nil {
			h.OnEnd()
		}
	}()

	var idle <-chan time.Time
	var timer *time.Timer
	if s.idleTimeout > 0 {
		timer = time.NewTimer(s.idleTimeout)
		defer timer.Stop()
		idle = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-idle:
			logger.Debug().Dur("idle", s.idleTimeout).Msg("no audio received, ending stream")
			return
		case path := <-s.segments:
			if h.OnInterim != nil {
				h.OnInterim("")
			}
			result, err := s.provider.Transcribe(ctx, path)
			removeSegment(logger, path)

			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				logger.Warn().Err(err).Msg("transcription failed")
				if result != nil && result.RawResponse != "" {
					logger.Debug().Str("raw", pkglog.Truncate(result.RawResponse, rawExcerptLen)).Msg("provider response")
				}
				if h.OnError != nil {
					h.OnError(err)
				}
			case h.OnFinal != nil:
				h.OnFinal(*result)
			}

			if timer != nil {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(s.idleTimeout)
			}
		}
	}
}

// drain removes queued segments that will never be transcribed. Callers hold
// s.mu so Feed cannot enqueue concurrently.
func (s *ProviderStream) drain(logger zerolog.Logger) int {
	n := 0
	for {
		select {
		case path := <-s.segments:
			removeSegment(logger, path)
			n++
		default:
			return n
		}
	}
}

func removeSegment(logger zerolog.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", path).Msg("failed to remove audio segment")
	}
}
