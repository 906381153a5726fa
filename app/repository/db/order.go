package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"sales-inventory/app/domain"

	"github.com/gofrs/uuid/v5"
)

type orderRepository struct {
	conn *sql.DB
}

func NewOrderRepository(db *sql.DB) domain.OrderRepository {
	return &orderRepository{db}
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) error {
	query := `INSERT INTO orders (id, product_id, quantity, status, created_at) VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.conn.ExecContext(ctx, query, order.ID, order.ProductID, order.Quantity, order.Status, order.CreatedAt); err != nil {
		slog.ErrorContext(ctx, "[orderRepository] Create", "execContext", err)
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	query := `SELECT id, product_id, quantity, status, created_at FROM orders WHERE id = $1`

	var o domain.Order
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.ProductID, &o.Quantity, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return o, domain.ErrNotFound
		}
		slog.ErrorContext(ctx, "[orderRepository] GetByID", "queryRowContext", err)
		return o, err
	}

	return o, nil
}

func (r *orderRepository) GetList(ctx context.Context, param domain.GetListRequest) ([]domain.Order, error) {
	query := `SELECT id, product_id, quantity, status, created_at
	FROM orders ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	rows, err := r.conn.QueryContext(ctx, query, param.Limit, (param.Page-1)*param.Limit)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] GetList", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.ProductID, &o.Quantity, &o.Status, &o.CreatedAt); err != nil {
			slog.ErrorContext(ctx, "[orderRepository] GetList", "scan", err)
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[orderRepository] GetList", "rowError", err)
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		slog.ErrorContext(ctx, "[orderRepository] Count", "queryRowContext", err)
		return 0, err
	}
	return count, nil
}
