package consumer

import (
	"context"
	"errors"
	"log/slog"

	"sales-inventory/app/domain"
)

// OrderConfirmedHandler turns an OrderConfirmed delivery into a stock
// mutation and decides how the delivery is settled.
type OrderConfirmedHandler struct {
	productUsecase domain.ProductService
}

func NewOrderConfirmedHandler(productUsecase domain.ProductService) *OrderConfirmedHandler {
	return &OrderConfirmedHandler{productUsecase: productUsecase}
}

// Handle acks malformed payloads and unknown products so they are not
// redelivered forever. Any other failure rejects without requeue.
func (h *OrderConfirmedHandler) Handle(ctx context.Context, body []byte) domain.DeliveryOutcome {
	event, err := domain.DecodeOrderConfirmed(body)
	if err != nil {
		slog.WarnContext(ctx, "[orderConfirmedHandler] Handle", "decode", err, "bytes", len(body))
		return domain.OutcomeAck
	}

	product, err := h.productUsecase.ApplyOrderConfirmed(ctx, event)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "[orderConfirmedHandler] Handle",
			"orderID", event.OrderID, "productID", product.ID, "stock", product.Stock)
		return domain.OutcomeAck
	case errors.Is(err, domain.ErrNotFound):
		slog.WarnContext(ctx, "[orderConfirmedHandler] Handle", "productNotFound", event.ProductID, "orderID", event.OrderID)
		return domain.OutcomeAck
	default:
		slog.ErrorContext(ctx, "[orderConfirmedHandler] Handle", "applyOrderConfirmed", err, "orderID", event.OrderID)
		return domain.OutcomeReject
	}
}
