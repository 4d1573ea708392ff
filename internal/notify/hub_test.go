package notify

import (
	"io"
	"log/slog"
	"testing"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHubFanOut(t *testing.T) {
	h := newTestHub()
	a := h.Subscribe()
	b := h.Subscribe()
	if h.Subscribers() != 2 {
		t.Fatalf("subscribers = %d, want 2", h.Subscribers())
	}

	h.Publish(Event{Type: "low_stock", Title: "Low stock: Shampoo"})

	for _, sub := range []*Subscriber{a, b} {
		select {
		case ev := <-sub.Events():
			if ev.Type != "low_stock" {
				t.Fatalf("event type = %q, want low_stock", ev.Type)
			}
		default:
			t.Fatal("subscriber did not receive published event")
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := newTestHub()
	sub := h.Subscribe()
	h.Unsubscribe(sub)
	if h.Subscribers() != 0 {
		t.Fatalf("subscribers = %d, want 0", h.Subscribers())
	}
	if _, ok := <-sub.Events(); ok {
		t.Fatal("channel not closed after unsubscribe")
	}
	// Second unsubscribe is a no-op, not a double close.
	h.Unsubscribe(sub)
}

func TestHubPublishDropsWhenFull(t *testing.T) {
	h := newTestHub()
	sub := h.Subscribe()
	for i := 0; i < cap(sub.ch)+5; i++ {
		h.Publish(Event{Type: "low_stock"})
	}
	if got := len(sub.ch); got != cap(sub.ch) {
		t.Fatalf("buffered events = %d, want %d", got, cap(sub.ch))
	}
}
