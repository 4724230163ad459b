package session

import (
	"sync"
	"time"
)

const (
	AuthorAgent       = "Morning Agent"
	AuthorAutoSuggest = "Auto Suggest"
	AuthorYou         = "You"
)

// Message is one entry of the agent feed.
type Message struct {
	Author string    `json:"author"`
	Body   string    `json:"body"`
	At     time.Time `json:"at"`
}

// Feed holds the agent messages shown to a session, oldest first.
type Feed struct {
	mu       sync.RWMutex
	messages []Message
	now      func() time.Time
}

func (f *Feed) Push(author, body string) Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now
	if f.now != nil {
		now = f.now
	}
	m := Message{Author: author, Body: body, At: now().UTC()}
	f.messages = append(f.messages, m)
	return m
}

func (f *Feed) Messages() []Message {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Message(nil), f.messages...)
}
