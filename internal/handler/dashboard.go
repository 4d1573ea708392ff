package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"salonms-backend/internal/repository"
)

type DashboardHandler struct {
	Repo repository.DashboardRepository
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.summary)
}

func (h DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repo.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	top, err := h.Repo.TopWorkers(r.Context(), 5)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	workers := make([]map[string]any, 0, len(top))
	for _, t := range top {
		workers = append(workers, map[string]any{
			"workerId": t.WorkerID,
			"name":     t.Name,
			"earnings": t.Earnings,
			"services": t.Services,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalCommissions": s.TotalCommissions,
		"totalServices":    s.TotalServices,
		"monthCommissions": s.MonthCommissions,
		"monthServices":    s.MonthServices,
		"lowStockItems":    s.LowStockItems,
		"unreadAlerts":     s.UnreadAlerts,
		"topWorkers":       workers,
	})
}
