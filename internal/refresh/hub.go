package refresh

import "sync"

// Hub is the in-process registry of connected widget hosts. Each host gets a
// buffered event channel; a host that can't keep up loses signals, which the
// protocol tolerates (the next signal or its own periodic re-read catches
// it up).
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

var hostHub = &Hub{subs: make(map[int]chan Event)}

// Subscribe registers a host connection and returns its event channel plus an
// unsubscribe func. The channel is closed on unsubscribe.
func Subscribe() (<-chan Event, func()) {
	return hostHub.subscribe()
}

// FanOut delivers an event to every connected host. Non-blocking: a full
// buffer drops the event for that host rather than stalling the subscriber.
func FanOut(event Event) {
	hostHub.fanOut(event)
}

func (h *Hub) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
		h.mu.Unlock()
	}
	return ch, unsubscribe
}

func (h *Hub) fanOut(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
