package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"salonms-backend/internal/domain"
	"salonms-backend/internal/repository"
)

const dateLayout = "2006-01-02"

type InventoryHandler struct {
	Repo repository.InventoryRepository
}

func (h InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/inventory", h.list)
	r.Post("/inventory", h.upsert)
	r.Post("/inventory/{id}/adjust", h.adjust)
	r.Delete("/inventory/{id}", h.delete)
}

func (h InventoryHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context(), 500)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, it := range items {
		resp = append(resp, toInventoryResponse(it))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h InventoryHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID            *int64 `json:"id"`
		Name          string `json:"name"`
		Category      string `json:"category"`
		Unit          string `json:"unit"`
		CurrentStock  int    `json:"currentStock"`
		MinStockLevel int    `json:"minStockLevel"`
		ExpiryDate    string `json:"expiryDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.CurrentStock < 0 || req.MinStockLevel < 0 {
		writeError(w, http.StatusBadRequest, "stock levels must not be negative")
		return
	}
	it := domain.InventoryItem{
		Name:          req.Name,
		Category:      req.Category,
		Unit:          req.Unit,
		CurrentStock:  req.CurrentStock,
		MinStockLevel: req.MinStockLevel,
	}
	if req.ID != nil {
		it.ID = *req.ID
	}
	if req.ExpiryDate != "" {
		t, err := time.Parse(dateLayout, req.ExpiryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid expiryDate")
			return
		}
		it.ExpiryDate = &t
	}
	saved, err := h.Repo.Save(r.Context(), it)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "inventory item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(*saved))
}

func (h InventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Change int `json:"change"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	saved, err := h.Repo.Adjust(r.Context(), id, req.Change)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "inventory item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(*saved))
}

func (h InventoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "inventory item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func toInventoryResponse(it domain.InventoryItem) map[string]any {
	resp := map[string]any{
		"id":            it.ID,
		"name":          it.Name,
		"category":      it.Category,
		"unit":          it.Unit,
		"currentStock":  it.CurrentStock,
		"minStockLevel": it.MinStockLevel,
		"lowStock":      it.CurrentStock <= it.MinStockLevel,
		"updatedAt":     it.UpdatedAt,
	}
	if it.ExpiryDate != nil {
		resp["expiryDate"] = it.ExpiryDate.Format(dateLayout)
	}
	return resp
}
