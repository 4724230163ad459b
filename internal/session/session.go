package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	pkglog "morning/internal/log"
	"morning/internal/stt"
	"morning/internal/suggest"
)

const (
	WelcomeMessage          = "Welcome to morning 🌇. I can auto-match you into the right live video room."
	StatusTranscriptCleared = "Transcript cleared."
)

// ErrAgentBusy is returned when a question is asked while another is still
// being answered.
var ErrAgentBusy = errors.New("agent is already answering")

// Answerer is implemented by *suggest.Engine.
type Answerer interface {
	Answer(ctx context.Context, credential, question string, lines []string) suggest.Reply
}

// AudioSink accepts recorded audio segments. *stt.ProviderStream implements it.
type AudioSink interface {
	Feed(path string) error
}

// StreamFactory creates the speech-to-text stream for a new session. It may
// return nil when live transcription is unavailable.
type StreamFactory func() stt.Stream

// Session owns everything one browser tab used to keep in page globals.
type Session struct {
	ID        string
	CreatedAt time.Time

	Transcript *Transcript
	Feed       *Feed
	Listener   *stt.Listener

	stream stt.Stream

	// lastSeen is unix nanoseconds of the last request for this session.
	lastSeen atomic.Int64

	mu            sync.Mutex
	meetingStatus string
	agentActive   bool
}

func newSession(id string, stream stt.Stream, now time.Time) *Session {
	s := &Session{
		ID:         id,
		CreatedAt:  now.UTC(),
		Transcript: &Transcript{},
		Feed:       &Feed{},
		stream:     stream,
	}
	s.Listener = stt.NewListener(stream, s.AddFinalLine)
	s.Touch(now)
	s.Feed.Push(AuthorAgent, WelcomeMessage)
	return s
}

// AddFinalLine records a finalized speech line and posts an automatic prompt
// when the recent lines contain a known topic.
func (s *Session) AddFinalLine(text string) {
	lines, ok := s.Transcript.Append(text)
	if !ok {
		return
	}
	if prompt, ok := suggest.AutoSuggest(lines); ok {
		s.Feed.Push(AuthorAutoSuggest, prompt)
	}
}

// ClearTranscript drops all lines and notes it in the listen status.
func (s *Session) ClearTranscript() {
	s.Transcript.Clear()
	s.Listener.SetStatus(StatusTranscriptCleared)
}

// FeedAudio hands a recorded segment to the session's stream.
func (s *Session) FeedAudio(path string) error {
	sink, ok := s.stream.(AudioSink)
	if !ok {
		return stt.ErrUnsupported
	}
	return sink.Feed(path)
}

// Ask echoes the question to the feed, answers it and posts the reply. Only
// one question is answered at a time per session.
func (s *Session) Ask(ctx context.Context, a Answerer, credential, question string) (suggest.Reply, error) {
	s.mu.Lock()
	if s.agentActive {
		s.mu.Unlock()
		return suggest.Reply{}, ErrAgentBusy
	}
	s.agentActive = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.agentActive = false
		s.mu.Unlock()
	}()

	s.Feed.Push(AuthorYou, question)
	reply := a.Answer(ctx, credential, question, s.Transcript.Lines())
	s.Feed.Push(AuthorAgent, reply.Text)

	logger := pkglog.Ctx(ctx)
	logger.Debug().
		Str(pkglog.FieldSessionID, s.ID).
		Str("source", string(reply.Source)).
		Msg("agent answered")
	return reply, nil
}

// AgentActive reports whether a question is being answered.
func (s *Session) AgentActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentActive
}

func (s *Session) MeetingStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetingStatus
}

func (s *Session) SetMeetingStatus(status string) {
	s.mu.Lock()
	s.meetingStatus = status
	s.mu.Unlock()
}

// Touch records activity on the session.
func (s *Session) Touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen returns the time of the last recorded activity.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Close stops listening.
func (s *Session) Close() error {
	return s.Listener.Stop()
}
