package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Event is a notification pushed to connected clients.
type Event struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity,omitempty"`
	EntityID  int64     `json:"entityId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Subscriber receives events on a buffered channel. A subscriber that stops
// draining loses events rather than blocking the publisher.
type Subscriber struct {
	ch chan Event
}

func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Hub fans events out to all subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscriber]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		logger: logger,
	}
}

func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan Event, 16)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// Publish delivers the event to every subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("notification subscriber channel full, dropping event", "type", ev.Type)
		}
	}
}

// Subscribers reports the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
