package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"salonms-backend/internal/db"
	"salonms-backend/internal/domain"
)

// InventoryChannel is the NOTIFY channel carrying inventory change events.
const InventoryChannel = "inventory_changes"

type InventoryRepository struct {
	DB *db.Postgres
}

const inventoryColumns = `id, name, category, unit, current_stock, min_stock_level, expiry_date, created_at, updated_at`

func (r InventoryRepository) List(ctx context.Context, limit int) ([]domain.InventoryItem, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// ListActive returns every live item. The alert checker evaluates the low
// stock and expiry conditions on these rows in Go.
func (r InventoryRepository) ListActive(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.List(ctx, 10000)
}

func (r InventoryRepository) Get(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	it, err := scanInventoryItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func (r InventoryRepository) Save(ctx context.Context, it domain.InventoryItem) (*domain.InventoryItem, error) {
	if it.ID == 0 {
		row := r.DB.Pool.QueryRow(ctx, `
			INSERT INTO inventory_items (name, category, unit, current_stock, min_stock_level, expiry_date, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6, now(), now())
			RETURNING `+inventoryColumns+`
		`, it.Name, it.Category, it.Unit, it.CurrentStock, it.MinStockLevel, it.ExpiryDate)
		return scanInventoryItem(row)
	}

	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET name=$1,
			category=$2,
			unit=$3,
			current_stock=$4,
			min_stock_level=$5,
			expiry_date=$6,
			updated_at=now(),
			deleted_at=NULL
		WHERE id=$7
		RETURNING `+inventoryColumns+`
	`, it.Name, it.Category, it.Unit, it.CurrentStock, it.MinStockLevel, it.ExpiryDate, it.ID)
	saved, err := scanInventoryItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return saved, nil
}

// Adjust applies a stock delta under a row lock, flooring at zero.
func (r InventoryRepository) Adjust(ctx context.Context, id int64, delta int) (*domain.InventoryItem, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current int
	err = tx.QueryRow(ctx, `
		SELECT current_stock FROM inventory_items
		WHERE id=$1 AND deleted_at IS NULL
		FOR UPDATE
	`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	newStock := current + delta
	if newStock < 0 {
		newStock = 0
	}
	row := tx.QueryRow(ctx, `
		UPDATE inventory_items
		SET current_stock=$1, updated_at=now()
		WHERE id=$2
		RETURNING `+inventoryColumns+`
	`, newStock, id)
	saved, err := scanInventoryItem(row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

func (r InventoryRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE inventory_items SET deleted_at = now() WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureChangeFeed installs the trigger that emits a NOTIFY on every
// inventory mutation. Safe to run on every start.
func (r InventoryRepository) EnsureChangeFeed(ctx context.Context) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		CREATE OR REPLACE FUNCTION notify_inventory_change() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('`+InventoryChannel+`', TG_OP);
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql
	`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		DROP TRIGGER IF EXISTS inventory_items_notify ON inventory_items
	`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		CREATE TRIGGER inventory_items_notify
		AFTER INSERT OR UPDATE OR DELETE ON inventory_items
		FOR EACH STATEMENT EXECUTE FUNCTION notify_inventory_change()
	`); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanInventoryItem(row interface {
	Scan(dest ...any) error
}) (*domain.InventoryItem, error) {
	var (
		it     domain.InventoryItem
		expiry pgtype.Timestamptz
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Unit, &it.CurrentStock, &it.MinStockLevel, &expiry, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	if expiry.Valid {
		t := expiry.Time
		it.ExpiryDate = &t
	}
	return &it, nil
}
