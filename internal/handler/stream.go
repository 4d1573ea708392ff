package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"salonms-backend/internal/notify"
)

// StreamHandler pushes notification events to clients over a websocket.
type StreamHandler struct {
	Hub    *notify.Hub
	Logger *slog.Logger
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is handled at the router; the socket itself is open.
		return true
	},
}

func (h StreamHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications/stream", h.stream)
}

func (h StreamHandler) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	sub := h.Hub.Subscribe()
	defer func() {
		h.Hub.Unsubscribe(sub)
		conn.Close()
	}()

	// Reader goroutine detects client disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
