package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"salonms-backend/internal/db"
	"salonms-backend/internal/domain"
)

type NotificationRepository struct {
	DB *db.Postgres
}

type CreateNotificationInput struct {
	UserID  *int64 // nil: visible to everyone
	Title   string
	Message string
	Type    domain.NotificationType
	Created time.Time
}

func (r NotificationRepository) Create(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error) {
	createdAt := in.Created
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, type, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, user_id, title, message, type, created_at, read_at
	`, in.UserID, in.Title, in.Message, string(in.Type), createdAt)
	return scanNotification(row)
}

// List returns a user's notifications plus broadcasts, newest first.
func (r NotificationRepository) List(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, title, message, type, created_at, read_at
		FROM notifications
		WHERE deleted_at IS NULL AND (user_id IS NULL OR user_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

func (r NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE deleted_at IS NULL AND read_at IS NULL AND (user_id IS NULL OR user_id = $1)
	`, userID).Scan(&count)
	return count, err
}

// MarkRead is idempotent; re-marking a read notification keeps the original
// read_at and succeeds.
func (r NotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications
		SET read_at = COALESCE(read_at, now())
		WHERE id=$1 AND deleted_at IS NULL AND (user_id IS NULL OR user_id = $2)
	`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications
		SET read_at = now()
		WHERE deleted_at IS NULL AND read_at IS NULL AND (user_id IS NULL OR user_id = $1)
	`, userID)
	return err
}

// ClearAll soft-deletes everything visible to the user.
func (r NotificationRepository) ClearAll(ctx context.Context, userID int64) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications
		SET deleted_at = now()
		WHERE deleted_at IS NULL AND (user_id IS NULL OR user_id = $1)
	`, userID)
	return err
}

func scanNotification(row interface {
	Scan(dest ...any) error
}) (*domain.Notification, error) {
	var (
		n   domain.Notification
		uid pgtype.Int8
		typ string
	)
	if err := row.Scan(&n.ID, &uid, &n.Title, &n.Message, &typ, &n.CreatedAt, &n.ReadAt); err != nil {
		return nil, err
	}
	if uid.Valid {
		n.UserID = &uid.Int64
	}
	n.Type = domain.NotificationType(typ)
	return &n, nil
}
