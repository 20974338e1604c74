package realtime

import (
	"log"
	"sync"
)

const subscriberBuffer = 16

// Hub fans change events out to per-table subscribers. Publishing never
// blocks: a subscriber that cannot keep up has events dropped and is
// expected to refetch (event rates here are human-scale admin activity).
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers interest in one table's events. The returned cancel
// function must be called exactly once; after it returns the channel is
// closed.
func (h *Hub) Subscribe(table string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[table] == nil {
		h.subs[table] = make(map[chan Event]struct{})
	}
	h.subs[table][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[table]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, table)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to all subscribers of its table
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[ev.Table] {
		select {
		case ch <- ev:
		default:
			log.Printf("⚠️  realtime: dropping %s event for slow %s subscriber", ev.Type, ev.Table)
		}
	}
}

// SubscriberCount reports how many subscribers a table has
func (h *Hub) SubscriberCount(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}
