package presence

import (
	"context"
	"sync"
)

// subscriberBuffer is the per-subscriber queue size. Packets beyond it are
// dropped; delivery is best effort.
const subscriberBuffer = 64

// Channel fans presence packets out to every subscriber.
type Channel interface {
	Publish(ctx context.Context, p Packet) error
	// Subscribe delivers packets until ctx is done, then closes the channel.
	Subscribe(ctx context.Context) (<-chan Packet, error)
	Close() error
}

// MemoryChannel is an in-process Channel.
type MemoryChannel struct {
	mu     sync.RWMutex
	subs   map[chan Packet]struct{}
	closed bool
}

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{subs: make(map[chan Packet]struct{})}
}

func (m *MemoryChannel) Publish(_ context.Context, p Packet) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for ch := range m.subs {
		select {
		case ch <- p:
		default:
			// Subscriber full, skip packet
		}
	}
	return nil
}

func (m *MemoryChannel) Subscribe(ctx context.Context) (<-chan Packet, error) {
	ch := make(chan Packet, subscriberBuffer)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, nil
	}
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.remove(ch)
	}()
	return ch, nil
}

func (m *MemoryChannel) remove(ch chan Packet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[ch]; ok {
		delete(m.subs, ch)
		close(ch)
	}
}

func (m *MemoryChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs {
		close(ch)
	}
	m.subs = make(map[chan Packet]struct{})
	m.closed = true
	return nil
}
