package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/msomdec/recipe-community/internal/domain"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Hub fans published events out to in-process subscribers and forwards them
// to any downstream publishers. Publish never blocks on a slow subscriber;
// events that do not fit in a subscriber's buffer are dropped for it.
type Hub struct {
	mu      sync.Mutex
	subs    map[chan domain.Event]struct{}
	forward []domain.EventPublisher
	dropped atomic.Uint64
}

// NewHub creates a Hub that also forwards every event to the given publishers.
func NewHub(forward ...domain.EventPublisher) *Hub {
	return &Hub{
		subs:    make(map[chan domain.Event]struct{}),
		forward: forward,
	}
}

// Publish implements domain.EventPublisher.
func (h *Hub) Publish(ctx context.Context, event domain.Event) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
	h.mu.Unlock()

	for _, p := range h.forward {
		p.Publish(ctx, event)
	}
}

// Subscribe registers a new subscriber. The returned cancel func unregisters
// it and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(buffer int) (<-chan domain.Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan domain.Event, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
