package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"salonms-backend/internal/db"
	"salonms-backend/internal/domain"
)

type WorkerRepository struct {
	DB *db.Postgres
}

const workerColumns = `id, name, phone, email, payment_type, commission_rate,
	total_earnings, current_month_earnings, services_performed, active, created_at, updated_at`

func (r WorkerRepository) List(ctx context.Context, limit int) ([]domain.Worker, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+workerColumns+`
		FROM workers
		WHERE deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *w)
	}
	return items, rows.Err()
}

func (r WorkerRepository) Get(ctx context.Context, id int64) (*domain.Worker, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+workerColumns+`
		FROM workers
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	w, err := scanWorker(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

func (r WorkerRepository) Save(ctx context.Context, w domain.Worker) (*domain.Worker, error) {
	if w.ID == 0 {
		row := r.DB.Pool.QueryRow(ctx, `
			INSERT INTO workers (name, phone, email, payment_type, commission_rate, total_earnings,
				current_month_earnings, services_performed, active, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5, 0, 0, 0, $6, now(), now())
			RETURNING `+workerColumns+`
		`, w.Name, w.Phone, w.Email, string(w.PaymentType), w.CommissionRate, w.Active)
		return scanWorker(row)
	}

	// Earnings counters are never set from payloads; they move through
	// ApplyService and ReplaceEarnings only.
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE workers
		SET name=$1,
			phone=$2,
			email=$3,
			payment_type=$4,
			commission_rate=$5,
			active=$6,
			updated_at=now(),
			deleted_at=NULL
		WHERE id=$7
		RETURNING `+workerColumns+`
	`, w.Name, w.Phone, w.Email, string(w.PaymentType), w.CommissionRate, w.Active, w.ID)
	saved, err := scanWorker(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return saved, nil
}

func (r WorkerRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE workers SET deleted_at = now() WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyService additively bumps a worker's earnings counters for one
// completed service.
func (r WorkerRepository) ApplyService(ctx context.Context, id int64, commission int64) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE workers
		SET total_earnings = total_earnings + $1,
			current_month_earnings = current_month_earnings + $1,
			services_performed = services_performed + 1,
			updated_at = now()
		WHERE id=$2 AND deleted_at IS NULL
	`, commission, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceEarnings overwrites the derived counters with values rebuilt from
// the service history.
func (r WorkerRepository) ReplaceEarnings(ctx context.Context, id int64, total, currentMonth, services int64) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE workers
		SET total_earnings = $1,
			current_month_earnings = $2,
			services_performed = $3,
			updated_at = now()
		WHERE id=$4 AND deleted_at IS NULL
	`, total, currentMonth, services, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWorker(row interface {
	Scan(dest ...any) error
}) (*domain.Worker, error) {
	var (
		w           domain.Worker
		paymentType string
	)
	if err := row.Scan(
		&w.ID,
		&w.Name,
		&w.Phone,
		&w.Email,
		&paymentType,
		&w.CommissionRate,
		&w.TotalEarnings,
		&w.CurrentMonthEarnings,
		&w.ServicesPerformed,
		&w.Active,
		&w.CreatedAt,
		&w.UpdatedAt,
	); err != nil {
		return nil, err
	}
	w.PaymentType = domain.PaymentType(paymentType)
	return &w, nil
}
