package repository

import (
	"context"

	"salonms-backend/internal/db"
)

type DashboardRepository struct {
	DB *db.Postgres
}

type DashboardSummary struct {
	TotalCommissions int64
	TotalServices    int64
	MonthCommissions int64
	MonthServices    int64
	LowStockItems    int64
	UnreadAlerts     int64
}

type TopWorker struct {
	WorkerID int64
	Name     string
	Earnings int64
	Services int64
}

func (r DashboardRepository) Summary(ctx context.Context) (DashboardSummary, error) {
	var s DashboardSummary
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(commission_paid),0) AS total_commissions,
			COUNT(*) AS total_services,
			COALESCE(SUM(commission_paid) FILTER (WHERE date_trunc('month', performed_at) = date_trunc('month', now())),0) AS month_commissions,
			COUNT(*) FILTER (WHERE date_trunc('month', performed_at) = date_trunc('month', now())) AS month_services
		FROM service_records
	`).Scan(&s.TotalCommissions, &s.TotalServices, &s.MonthCommissions, &s.MonthServices)
	if err != nil {
		return s, err
	}

	err = r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_items
		WHERE deleted_at IS NULL AND current_stock <= min_stock_level
	`).Scan(&s.LowStockItems)
	if err != nil {
		return s, err
	}

	err = r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM alerts
		WHERE is_read = FALSE AND expires_at > now()
	`).Scan(&s.UnreadAlerts)
	return s, err
}

func (r DashboardRepository) TopWorkers(ctx context.Context, limit int) ([]TopWorker, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT w.id, w.name, COALESCE(SUM(sr.commission_paid),0) AS earnings, COUNT(sr.id) AS services
		FROM workers w
		LEFT JOIN service_records sr ON sr.worker_id = w.id
		WHERE w.deleted_at IS NULL
		GROUP BY w.id, w.name
		ORDER BY earnings DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TopWorker
	for rows.Next() {
		var t TopWorker
		if err := rows.Scan(&t.WorkerID, &t.Name, &t.Earnings, &t.Services); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
