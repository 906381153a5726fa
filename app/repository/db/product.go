package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"sales-inventory/app/domain"
	"sales-inventory/pkg"

	"github.com/gofrs/uuid/v5"
)

type productRepository struct {
	conn *sql.DB
}

func NewProductRepository(db *sql.DB) domain.ProductRepository {
	return &productRepository{db}
}

const productColumns = `id, name, description, price, stock, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) error {
	query := `INSERT INTO products (id, name, description, price, stock, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

	res, err := r.conn.ExecContext(ctx, query, product.ID, product.Name, product.Description,
		product.Price, product.Stock, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] Create", "execContext", err)
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] Create", "rowsAffected", err)
		return err
	}
	if rowsAffected == 0 {
		slog.ErrorContext(ctx, "[productRepository] Create", "noRowsAffected", "No rows were inserted")
		return fmt.Errorf("no rows were inserted")
	}

	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return product, domain.ErrNotFound
		}
		slog.ErrorContext(ctx, "[productRepository] GetByID", "queryRowContext", err)
		return product, err
	}

	return product, nil
}

func (r *productRepository) GetStock(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `SELECT stock FROM products WHERE id = $1`

	var stock int64
	if err := r.conn.QueryRowContext(ctx, query, id).Scan(&stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		slog.ErrorContext(ctx, "[productRepository] GetStock", "queryRowContext", err)
		return 0, err
	}

	return stock, nil
}

func (r *productRepository) GetList(ctx context.Context, param domain.GetListRequest) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	rows, err := r.conn.QueryContext(ctx, query, param.Limit, (param.Page-1)*param.Limit)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] GetList", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			slog.ErrorContext(ctx, "[productRepository] GetList", "scan", err)
			return nil, err
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[productRepository] GetList", "rowError", err)
		return nil, err
	}

	return products, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		slog.ErrorContext(ctx, "[productRepository] Count", "queryRowContext", err)
		return 0, err
	}
	return count, nil
}

// LockForUpdate reads the product row and holds a row lock until tx ends.
func (r *productRepository) LockForUpdate(ctx context.Context, id uuid.UUID, tx *sql.Tx) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	product, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return product, domain.ErrNotFound
		}
		slog.ErrorContext(ctx, "[productRepository] LockForUpdate", "queryRowContext", err)
		return product, err
	}

	return product, nil
}

func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int64, tx *sql.Tx) error {
	query := `UPDATE products SET stock = $1, updated_at = now() WHERE id = $2`

	res, err := tx.ExecContext(ctx, query, stock, id)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] UpdateStock", "execContext", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *productRepository) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	if err := pkg.WithTransaction(ctx, r.conn, fn); err != nil {
		slog.ErrorContext(ctx, "[productRepository] WithTransaction", "transaction", err)
		return err
	}
	return nil
}
