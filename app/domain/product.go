package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"
)

type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int64     `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int64   `json:"stock" validate:"gte=0"`
}

type AvailabilityResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	Available    bool      `json:"available"`
	CurrentStock int64     `json:"current_stock"`
}

type GetListRequest struct {
	Page  int64 `query:"page"`
	Limit int64 `query:"limit"`
}

type Metadata struct {
	TotalData int64 `json:"total_data"`
	TotalPage int64 `json:"total_page"`
	Page      int64 `json:"page"`
	Limit     int64 `json:"limit"`
}

func NewMetadata(count int64, param GetListRequest) Metadata {
	return Metadata{
		TotalData: count,
		TotalPage: (count + param.Limit - 1) / param.Limit,
		Page:      param.Page,
		Limit:     param.Limit,
	}
}

type ProductRepository interface {
	Create(ctx context.Context, product Product) error
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	// GetStock always reads the store of record, never a cache.
	GetStock(ctx context.Context, id uuid.UUID) (int64, error)
	GetList(ctx context.Context, param GetListRequest) ([]Product, error)
	Count(ctx context.Context) (int64, error)
	LockForUpdate(ctx context.Context, id uuid.UUID, tx *sql.Tx) (Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int64, tx *sql.Tx) error

	WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error
}

type ProductService interface {
	Create(ctx context.Context, req ProductCreateRequest) (Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	GetList(ctx context.Context, param GetListRequest) ([]Product, Metadata, error)
	Availability(ctx context.Context, id uuid.UUID, quantity int64) (AvailabilityResponse, error)
	// ApplyOrderConfirmed decrements stock by the event quantity, floored at
	// zero. A missing product returns ErrNotFound and changes nothing.
	ApplyOrderConfirmed(ctx context.Context, event OrderConfirmed) (Product, error)
}
