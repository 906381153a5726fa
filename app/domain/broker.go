package domain

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

// StockMessage is published on NATS whenever a product's stock level changes.
type StockMessage struct {
	ProductID uuid.UUID `json:"product_id"`
	Available int64     `json:"available"`
}

type StockPublisher interface {
	PublishStockAvailable(ctx context.Context, data StockMessage) error
}

// OrderEventPublisher is fire-and-forget: connectivity problems are logged by
// the implementation and never reach the caller.
type OrderEventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, event OrderConfirmed)
}
