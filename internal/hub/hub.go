package hub

import (
	"log"
	"sync"

	"github.com/arengifoc/logsort/internal/model"
)

const subscriberBuffer = 1024

// Hub broadcasts pipeline events to all subscribers. The terminal renderer
// and the dashboard websocket each subscribe independently.
type Hub struct {
	mu          sync.RWMutex
	subscribers []chan model.Event
	dropped     int64
	closed      bool
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{}
}

// Subscribe returns a buffered channel that will receive every published
// event. Multiple consumers can subscribe; each gets a copy.
func (h *Hub) Subscribe() <-chan model.Event {
	ch := make(chan model.Event, subscriberBuffer)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Publish sends an event to all subscribers. If a subscriber's channel is
// full, the event is dropped for that subscriber.
func (h *Hub) Publish(ev model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for _, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.dropped++
			log.Printf("hub: dropped event for slow consumer (total dropped: %d)", h.dropped)
		}
	}
}

// Dropped returns the total number of events dropped due to slow consumers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Close closes all subscriber channels. Publish becomes a no-op afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
