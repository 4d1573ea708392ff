package repository

import (
	"context"
	"time"

	"salonms-backend/internal/db"
	"salonms-backend/internal/domain"
)

type AlertRepository struct {
	DB *db.Postgres
}

type CreateAlertInput struct {
	Type      domain.AlertType
	Severity  domain.AlertSeverity
	EntityID  int64
	Title     string
	Message   string
	ExpiresAt time.Time
}

func (r AlertRepository) Create(ctx context.Context, in CreateAlertInput) (*domain.Alert, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO alerts (type, severity, entity_id, title, message, is_read, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5, FALSE, now(), $6)
		RETURNING id, type, severity, entity_id, title, message, is_read, created_at, expires_at
	`, string(in.Type), string(in.Severity), in.EntityID, in.Title, in.Message, in.ExpiresAt)
	return scanAlert(row)
}

// LatestByEntity returns, for one alert type, the most recent alert per
// inventory item. The dedup check runs against this map.
func (r AlertRepository) LatestByEntity(ctx context.Context, typ domain.AlertType) (map[int64]domain.Alert, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT DISTINCT ON (entity_id)
			id, type, severity, entity_id, title, message, is_read, created_at, expires_at
		FROM alerts
		WHERE type=$1
		ORDER BY entity_id, created_at DESC, id DESC
	`, string(typ))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	latest := make(map[int64]domain.Alert)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		latest[a.EntityID] = *a
	}
	return latest, rows.Err()
}

// List returns alerts that have not passed their expiry, newest first.
func (r AlertRepository) List(ctx context.Context, limit int) ([]domain.Alert, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, type, severity, entity_id, title, message, is_read, created_at, expires_at
		FROM alerts
		WHERE expires_at > now()
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

func (r AlertRepository) MarkRead(ctx context.Context, id int64) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE alerts SET is_read = TRUE WHERE id=$1
	`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAlert(row interface {
	Scan(dest ...any) error
}) (*domain.Alert, error) {
	var (
		a        domain.Alert
		typ      string
		severity string
	)
	if err := row.Scan(&a.ID, &typ, &severity, &a.EntityID, &a.Title, &a.Message, &a.IsRead, &a.CreatedAt, &a.ExpiresAt); err != nil {
		return nil, err
	}
	a.Type = domain.AlertType(typ)
	a.Severity = domain.AlertSeverity(severity)
	return &a, nil
}
