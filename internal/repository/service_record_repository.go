package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"salonms-backend/internal/db"
	"salonms-backend/internal/domain"
)

type ServiceRecordRepository struct {
	DB *db.Postgres
}

type CreateServiceRecordInput struct {
	WorkerID       int64
	ProductID      *int64
	ServiceName    string
	ServicePrice   int64
	CommissionPaid int64
	PerformedAt    time.Time
}

func (r ServiceRecordRepository) Create(ctx context.Context, in CreateServiceRecordInput) (*domain.ServiceRecord, error) {
	performedAt := in.PerformedAt
	if performedAt.IsZero() {
		performedAt = time.Now()
	}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO service_records (worker_id, product_id, service_name, service_price, commission_paid, performed_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, worker_id, product_id, service_name, service_price, commission_paid, performed_at
	`, in.WorkerID, in.ProductID, in.ServiceName, in.ServicePrice, in.CommissionPaid, performedAt)
	return scanServiceRecord(row)
}

func (r ServiceRecordRepository) ListByWorker(ctx context.Context, workerID int64, limit int) ([]domain.ServiceRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, worker_id, product_id, service_name, service_price, commission_paid, performed_at
		FROM service_records
		WHERE worker_id=$1
		ORDER BY performed_at DESC, id DESC
		LIMIT $2
	`, workerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectServiceRecords(rows)
}

// History returns the full service history, oldest first. Input to the bulk
// earnings recalculation.
func (r ServiceRecordRepository) History(ctx context.Context) ([]domain.ServiceRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, worker_id, product_id, service_name, service_price, commission_paid, performed_at
		FROM service_records
		ORDER BY performed_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectServiceRecords(rows)
}

func collectServiceRecords(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]domain.ServiceRecord, error) {
	var items []domain.ServiceRecord
	for rows.Next() {
		rec, err := scanServiceRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	return items, rows.Err()
}

func scanServiceRecord(row interface {
	Scan(dest ...any) error
}) (*domain.ServiceRecord, error) {
	var (
		rec       domain.ServiceRecord
		productID pgtype.Int8
	)
	if err := row.Scan(&rec.ID, &rec.WorkerID, &productID, &rec.ServiceName, &rec.ServicePrice, &rec.CommissionPaid, &rec.PerformedAt); err != nil {
		return nil, err
	}
	if productID.Valid {
		rec.ProductID = &productID.Int64
	}
	return &rec, nil
}
