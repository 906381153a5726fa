package domain

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

const OrderStatusConfirmed = "Confirmed"

type Order struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderCreateRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type OrderRepository interface {
	Create(ctx context.Context, order Order) error
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	GetList(ctx context.Context, param GetListRequest) ([]Order, error)
	Count(ctx context.Context) (int64, error)
}

// InventoryClient asks the inventory service whether quantity units of a
// product can be sold.
type InventoryClient interface {
	Availability(ctx context.Context, productID uuid.UUID, quantity int) (AvailabilityResponse, error)
}

type OrderService interface {
	Create(ctx context.Context, req OrderCreateRequest) (Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	GetList(ctx context.Context, param GetListRequest) ([]Order, Metadata, error)
}
