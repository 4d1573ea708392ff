package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"salonms-backend/internal/repository"
	"salonms-backend/internal/service"
)

type ServiceRecordHandler struct {
	Earnings service.EarningsService
	Repo     repository.ServiceRecordRepository
}

func (h ServiceRecordHandler) RegisterRoutes(r chi.Router) {
	r.Post("/services", h.record)
	r.Get("/services", h.list)
}

// record registers a completed service and credits the worker's commission.
func (h ServiceRecordHandler) record(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkerID    int64  `json:"workerId"`
		ProductID   *int64 `json:"productId"`
		ServiceName string `json:"serviceName"`
		Price       int64  `json:"price"`
		PerformedAt string `json:"performedAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.WorkerID == 0 {
		writeError(w, http.StatusBadRequest, "workerId is required")
		return
	}
	if req.ServiceName == "" {
		writeError(w, http.StatusBadRequest, "serviceName is required")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	var performedAt time.Time
	if req.PerformedAt != "" {
		t, err := time.Parse(time.RFC3339, req.PerformedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid performedAt")
			return
		}
		performedAt = t
	}
	rec, err := h.Earnings.RecordService(r.Context(), service.RecordServiceInput{
		WorkerID:     req.WorkerID,
		ProductID:    req.ProductID,
		ServiceName:  req.ServiceName,
		ServicePrice: req.Price,
		PerformedAt:  performedAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "worker not found")
		case errors.Is(err, service.ErrWorkerInactive):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          rec.ID,
		"workerId":    rec.WorkerID,
		"serviceName": rec.ServiceName,
		"price":       rec.ServicePrice,
		"commission":  rec.CommissionPaid,
		"performedAt": rec.PerformedAt.Format(time.RFC3339),
	})
}

func (h ServiceRecordHandler) list(w http.ResponseWriter, r *http.Request) {
	workerID, err := strconv.ParseInt(r.URL.Query().Get("workerId"), 10, 64)
	if err != nil || workerID == 0 {
		writeError(w, http.StatusBadRequest, "workerId query parameter is required")
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	items, err := h.Repo.ListByWorker(r.Context(), workerID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, rec := range items {
		resp = append(resp, map[string]any{
			"id":          rec.ID,
			"workerId":    rec.WorkerID,
			"productId":   rec.ProductID,
			"serviceName": rec.ServiceName,
			"price":       rec.ServicePrice,
			"commission":  rec.CommissionPaid,
			"performedAt": rec.PerformedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
