package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	pkglog "morning/internal/log"
	"morning/internal/stt"
)

// Manager keeps the live sessions of the process in memory. Sessions that
// see no activity for longer than the idle TTL are evicted by Sweep.
type Manager struct {
	newStream StreamFactory
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager. newStream may be nil.
func NewManager(newStream StreamFactory) *Manager {
	return &Manager{
		newStream: newStream,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// WithClock replaces the clock used for activity tracking.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Create starts a new session with a fresh ID.
func (m *Manager) Create() *Session {
	var stream stt.Stream
	if m.newStream != nil {
		stream = m.newStream()
	}
	s := newSession(uuid.New().String(), stream, m.now())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, or a new session when id is empty
// or unknown. created reports which. Either way the session is marked active.
func (m *Manager) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			s.Touch(m.now())
			return s, false
		}
	}
	return m.Create(), true
}

// Remove closes and forgets a session.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		_ = s.Close()
	}
	return ok
}

// Sweep removes every session idle for longer than ttl and returns their IDs.
func (m *Manager) Sweep(ttl time.Duration) []string {
	cutoff := m.now().Add(-ttl)

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	ids := make([]string, 0, len(expired))
	for _, s := range expired {
		_ = s.Close()
		ids = append(ids, s.ID)
	}
	return ids
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	logger := pkglog.Ctx(ctx).With().Str(pkglog.FieldComponent, "session.janitor").Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ids := m.Sweep(ttl); len(ids) > 0 {
				logger.Info().Int("evicted", len(ids)).Int("remaining", m.Len()).Msg("evicted idle sessions")
			}
		}
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
