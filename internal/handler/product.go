package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"salonms-backend/internal/domain"
	"salonms-backend/internal/repository"
	"salonms-backend/internal/server/authctx"
)

type ProductHandler struct {
	Repo     repository.ProductRepository
	Currency string
}

func (h ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
}

// RegisterAdminRoutes mounts the mutating endpoints on the manager group.
func (h ProductHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/products", h.upsert)
	r.Delete("/products/{id}", h.delete)
}

func (h ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	items, err := h.Repo.List(r.Context(), search, 500)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, p := range items {
		resp = append(resp, h.toResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(*p))
}

func (h ProductHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          *int64 `json:"id"`
		Name        string `json:"name"`
		Category    string `json:"category"`
		Price       int64  `json:"price"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	p := domain.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       domain.Money{Amount: req.Price, Currency: h.Currency},
		Description: req.Description,
	}
	if req.ID != nil {
		p.ID = *req.ID
	}
	if user := authctx.FromContext(r.Context()); user != nil {
		p.CreatedBy = &user.ID
	}
	saved, err := h.Repo.Save(r.Context(), p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(*saved))
}

func (h ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h ProductHandler) toResponse(p domain.Product) map[string]any {
	price := domain.Money{Amount: p.Price.Amount, Currency: h.Currency}
	return map[string]any{
		"id":             strconv.FormatInt(p.ID, 10),
		"name":           p.Name,
		"category":       p.Category,
		"price":          p.Price.Amount,
		"priceFormatted": price.Format(),
		"description":    p.Description,
		"createdBy":      p.CreatedBy,
		"createdAt":      p.CreatedAt,
		"updatedAt":      p.UpdatedAt,
	}
}
