// Package workspace carries visualizations from the chat pipeline to
// whichever transport renders them.
package workspace

import (
	"sync"

	"github.com/sandevgo/vizchat/internal/viz"
)

type EventKind int

const (
	EventAdd EventKind = iota
	EventClear
)

// Event is one workspace update. Visualization is nil for clears.
type Event struct {
	Kind          EventKind
	Visualization viz.Visualization
}

// Bus is a fan-out event channel. Publishing never blocks: a
// subscriber that stops draining loses events instead of stalling the
// chat pipeline.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a receive channel and its cancel func. Cancel is
// idempotent and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	ch := make(chan Event, 32)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (b *Bus) publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *Bus) Add(v viz.Visualization) {
	b.publish(Event{Kind: EventAdd, Visualization: v})
}

func (b *Bus) Clear() {
	b.publish(Event{Kind: EventClear})
}
