package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"salonms-backend/internal/domain"
	"salonms-backend/internal/repository"
	"salonms-backend/internal/service"
)

type WorkerHandler struct {
	Repo     repository.WorkerRepository
	Services repository.ServiceRecordRepository
	Earnings service.EarningsService
	Currency string
}

func (h WorkerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/workers", h.list)
	r.Get("/workers/{id}/earnings", h.earnings)
	r.Post("/workers", h.upsert)
	r.Delete("/workers/{id}", h.delete)
	r.Post("/workers/recalculate", h.recalculate)
}

func (h WorkerHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context(), 500)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, wk := range items {
		resp = append(resp, h.toResponse(wk))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h WorkerHandler) earnings(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	wk, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "worker not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	recent, err := h.Services.ListByWorker(r.Context(), id, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	services := make([]map[string]any, 0, len(recent))
	for _, rec := range recent {
		services = append(services, map[string]any{
			"id":          rec.ID,
			"serviceName": rec.ServiceName,
			"price":       rec.ServicePrice,
			"commission":  rec.CommissionPaid,
			"performedAt": rec.PerformedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"worker":         h.toResponse(*wk),
		"recentServices": services,
	})
}

func (h WorkerHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID             *int64   `json:"id"`
		Name           string   `json:"name"`
		Phone          string   `json:"phone"`
		Email          string   `json:"email"`
		PaymentType    string   `json:"paymentType"`
		CommissionRate *float64 `json:"commissionRate"`
		Active         *bool    `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	paymentType := domain.PaymentType(strings.ToLower(strings.TrimSpace(req.PaymentType)))
	switch paymentType {
	case domain.PaymentFixed, domain.PaymentCommission:
	case "":
		paymentType = domain.PaymentFixed
	default:
		writeError(w, http.StatusBadRequest, "paymentType must be fixed or commission")
		return
	}
	var rate float64
	if req.CommissionRate != nil {
		rate = *req.CommissionRate
	}
	if rate < 0 || rate > 100 {
		writeError(w, http.StatusBadRequest, "commissionRate must be between 0 and 100")
		return
	}
	if paymentType == domain.PaymentCommission && rate == 0 {
		writeError(w, http.StatusBadRequest, "commissionRate is required for commission workers")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	wk := domain.Worker{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		PaymentType:    paymentType,
		CommissionRate: rate,
		Active:         active,
	}
	if req.ID != nil {
		wk.ID = *req.ID
	}
	saved, err := h.Repo.Save(r.Context(), wk)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "worker not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(*saved))
}

func (h WorkerHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "worker not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h WorkerHandler) recalculate(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Earnings.RecalculateAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workersUpdated": summary.WorkersUpdated,
		"servicesSeen":   summary.ServicesSeen,
	})
}

func (h WorkerHandler) toResponse(wk domain.Worker) map[string]any {
	total := domain.Money{Amount: wk.TotalEarnings, Currency: h.Currency}
	month := domain.Money{Amount: wk.CurrentMonthEarnings, Currency: h.Currency}
	return map[string]any{
		"id":                      wk.ID,
		"name":                    wk.Name,
		"phone":                   wk.Phone,
		"email":                   wk.Email,
		"paymentType":             string(wk.PaymentType),
		"commissionRate":          wk.CommissionRate,
		"totalEarnings":           wk.TotalEarnings,
		"totalEarningsFmt":        total.Format(),
		"currentMonthEarnings":    wk.CurrentMonthEarnings,
		"currentMonthEarningsFmt": month.Format(),
		"servicesPerformed":       wk.ServicesPerformed,
		"active":                  wk.Active,
	}
}
