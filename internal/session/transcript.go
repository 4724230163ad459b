package session

import (
	"strings"
	"sync"

	"morning/internal/suggest"
)

// Transcript is the ordered list of finalized speech lines for one session.
// Lines are only appended, or all cleared at once.
type Transcript struct {
	mu    sync.RWMutex
	lines []string
}

// Append adds a line and returns a snapshot of the lines after the append.
// Blank input is ignored.
func (t *Transcript) Append(line string) ([]string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	return append([]string(nil), t.lines...), true
}

func (t *Transcript) Clear() {
	t.mu.Lock()
	t.lines = nil
	t.mu.Unlock()
}

// Lines returns a copy of all lines, never nil.
func (t *Transcript) Lines() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Window returns a copy of the last n lines.
func (t *Transcript) Window(n int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), suggest.Window(t.lines, n)...)
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.lines)
}
