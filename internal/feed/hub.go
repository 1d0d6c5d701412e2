package feed

import "sync"

// Topics published by the service.
const (
	TopicScans = "scans"
	TopicUsers = "users"
)

// Hub fans whole-snapshot payloads out to subscribers per topic. Each
// publish replaces the previous snapshot; subscribers never receive
// deltas, so a missed intermediate snapshot is harmless.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan []byte]struct{}
	latest map[string][]byte
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[string]map[chan []byte]struct{}),
		latest: make(map[string][]byte),
	}
}

// Subscribe registers for a topic. The current snapshot, if any, is
// delivered immediately. The returned cancel func must be called to
// release the subscription.
func (h *Hub) Subscribe(topic string) (<-chan []byte, func()) {
	ch := make(chan []byte, 8)

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[chan []byte]struct{})
	}
	h.subs[topic][ch] = struct{}{}
	if snapshot, ok := h.latest[topic]; ok {
		ch <- snapshot
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs[topic], ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish replaces the topic's snapshot and notifies subscribers. A
// subscriber whose buffer is full skips this snapshot; it will catch up
// on the next one. Publishers are never blocked.
func (h *Hub) Publish(topic string, snapshot []byte) {
	h.mu.Lock()
	h.latest[topic] = snapshot
	for ch := range h.subs[topic] {
		select {
		case ch <- snapshot:
		default:
		}
	}
	h.mu.Unlock()
}
