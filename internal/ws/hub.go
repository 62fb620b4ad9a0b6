// Package ws implements the live observer channel: an in-memory registry
// of connected admin dashboards receiving presence broadcasts.
package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Observer receives serialized broadcast messages. Send must not block
// indefinitely; the websocket client implementation pushes into a buffered
// channel and reports an error when the observer cannot keep up.
type Observer interface {
	Send(msg []byte) error
}

// Hub is the process-local observer registry. Observers do not survive a
// restart; clients reconnect and re-authenticate. There is no queuing or
// replay — an observer only sees messages broadcast while it is registered.
type Hub struct {
	mu        sync.Mutex
	observers map[Observer]struct{}
}

func NewHub() *Hub {
	return &Hub{observers: make(map[Observer]struct{})}
}

// Register adds an observer to the registry.
func (h *Hub) Register(o Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers[o] = struct{}{}
	log.Printf("ws: observer connected (%d total)", len(h.observers))
}

// Unregister removes an observer. Removing an absent observer is a no-op.
func (h *Hub) Unregister(o Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.observers[o]; !ok {
		return
	}
	delete(h.observers, o)
	log.Printf("ws: observer disconnected (%d total)", len(h.observers))
}

// Count returns the number of registered observers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// Broadcast serializes v once and delivers it to every registered
// observer. Delivery is best-effort per observer: a failing observer is
// dropped from the registry and the rest still receive the message.
// Broadcast never returns an error to the caller; with no observers it is
// a no-op. The registry lock is held only for the snapshot, not for
// delivery.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("ws: broadcast marshal failed: %v", err)
		return
	}

	h.mu.Lock()
	targets := make([]Observer, 0, len(h.observers))
	for o := range h.observers {
		targets = append(targets, o)
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return
	}
	log.Printf("ws: broadcasting message to %d observers", len(targets))
	for _, o := range targets {
		if err := o.Send(data); err != nil {
			log.Printf("ws: dropping observer after send failure: %v", err)
			h.Unregister(o)
			// Tear the observer down too, or its connection lingers
			// half-dead: registered nowhere but still pinging the peer.
			if c, ok := o.(interface{ Close() }); ok {
				c.Close()
			}
		}
	}
}
