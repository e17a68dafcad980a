// Package eventbus is an in-memory fanout of lifecycle events
// (poll cycles, notifier deliveries). It owns no goroutines.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Event types published by hwbot components.
const (
	TypePollCycle      = "poller.cycle"
	TypeNotifierSent   = "notifier.sent"
	TypeNotifierFailed = "notifier.failed"
)

// Event is a small, ideally JSON-serializable signal.
//
// Publish never blocks; subscribers get buffered channels and lose events
// when they fall behind.
type Event struct {
	Type string
	Time time.Time
	Data any
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

func New() Bus {
	return &memBus{subs: map[uint64]chan Event{}}
}

type memBus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	seq  atomic.Uint64
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// Sending under the read lock keeps Unsubscribe from closing a channel
	// mid-send; sends are non-blocking so the lock is held briefly.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
}
