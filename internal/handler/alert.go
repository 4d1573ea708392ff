package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"salonms-backend/internal/repository"
)

type AlertHandler struct {
	Repo repository.AlertRepository
}

func (h AlertHandler) RegisterRoutes(r chi.Router) {
	r.Get("/alerts", h.list)
	r.Post("/alerts/{id}/read", h.markRead)
}

func (h AlertHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context(), 200)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, a := range items {
		resp = append(resp, map[string]any{
			"id":        a.ID,
			"type":      string(a.Type),
			"severity":  string(a.Severity),
			"entityId":  a.EntityID,
			"title":     a.Title,
			"message":   a.Message,
			"isRead":    a.IsRead,
			"createdAt": a.CreatedAt.Format(time.RFC3339),
			"expiresAt": a.ExpiresAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h AlertHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
