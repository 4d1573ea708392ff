package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"salonms-backend/internal/config"
	"salonms-backend/internal/domain"
	"salonms-backend/internal/handler"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	products handler.ProductHandler,
	workers handler.WorkerHandler,
	services handler.ServiceRecordHandler,
	inventory handler.InventoryHandler,
	alerts handler.AlertHandler,
	notifications handler.NotificationHandler,
	stream handler.StreamHandler,
	earningsExport handler.EarningsExportHandler,
	dashboard handler.DashboardHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		auth.RegisterProtectedRoutes(pr)
		// staff-level (staff/manager/admin)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleStaff))
			products.RegisterRoutes(sr)
			services.RegisterRoutes(sr)
			alerts.RegisterRoutes(sr)
			notifications.RegisterRoutes(sr)
			stream.RegisterRoutes(sr)
		})
		// manager-level (manager/admin)
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager))
			products.RegisterAdminRoutes(mr)
			workers.RegisterRoutes(mr)
			inventory.RegisterRoutes(mr)
			earningsExport.RegisterRoutes(mr)
			dashboard.RegisterRoutes(mr)
		})
	})

	return r
}
