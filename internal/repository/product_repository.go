package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"salonms-backend/internal/db"
	"salonms-backend/internal/domain"
)

type ProductRepository struct {
	DB *db.Postgres
}

func (r ProductRepository) List(ctx context.Context, search string, limit int) ([]domain.Product, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, category, price, description, created_by, created_at, updated_at
		FROM products
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%')
		ORDER BY name ASC
		LIMIT $2
	`, search, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (r ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, category, price, description, created_by, created_at, updated_at
		FROM products
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r ProductRepository) Save(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == 0 {
		row := r.DB.Pool.QueryRow(ctx, `
			INSERT INTO products (name, category, price, description, created_by, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5, now(), now())
			RETURNING id, name, category, price, description, created_by, created_at, updated_at
		`, p.Name, p.Category, p.Price.Amount, p.Description, p.CreatedBy)
		return scanProduct(row)
	}

	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE products
		SET name=$1,
			category=$2,
			price=$3,
			description=$4,
			updated_at=now(),
			deleted_at=NULL
		WHERE id=$5
		RETURNING id, name, category, price, description, created_by, created_at, updated_at
	`, p.Name, p.Category, p.Price.Amount, p.Description, p.ID)
	saved, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return saved, nil
}

func (r ProductRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE products SET deleted_at = now() WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row interface {
	Scan(dest ...any) error
}) (*domain.Product, error) {
	var (
		p         domain.Product
		createdBy pgtype.Int8
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price.Amount, &p.Description, &createdBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		p.CreatedBy = &createdBy.Int64
	}
	return &p, nil
}
