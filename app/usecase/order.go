package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sales-inventory/app/domain"
	"sales-inventory/pkg/ctxutil"

	"github.com/gofrs/uuid/v5"
)

type orderUsecase struct {
	orderRepo      domain.OrderRepository
	inventory      domain.InventoryClient
	eventPublisher domain.OrderEventPublisher
	now            func() time.Time
}

func NewOrderUsecase(orderRepo domain.OrderRepository, inventory domain.InventoryClient, eventPublisher domain.OrderEventPublisher) domain.OrderService {
	return &orderUsecase{orderRepo, inventory, eventPublisher, time.Now}
}

// Create checks availability, persists the order as Confirmed and publishes
// OrderConfirmed. Stock is decremented later by the inventory consumer.
func (u *orderUsecase) Create(ctx context.Context, req domain.OrderCreateRequest) (domain.Order, error) {
	productID, err := uuid.FromString(req.ProductID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: product_id", domain.ErrValidation)
	}

	avail, err := u.inventory.Availability(ctx, productID, req.Quantity)
	if err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] Create", "availability", err)
		return domain.Order{}, err
	}
	if !avail.Available {
		slog.InfoContext(ctx, "[orderUsecase] Create", "insufficientStock", productID, "requested", req.Quantity, "currentStock", avail.CurrentStock)
		return domain.Order{}, fmt.Errorf("%w: %d requested, %d in stock", domain.ErrInsufficientStock, req.Quantity, avail.CurrentStock)
	}

	id, err := uuid.NewV4()
	if err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] Create", "uuid", err)
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:        id,
		ProductID: productID,
		Quantity:  req.Quantity,
		Status:    domain.OrderStatusConfirmed,
		CreatedAt: u.now().UTC(),
	}
	if err := u.orderRepo.Create(ctx, order); err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] Create", "createOrder", err)
		return domain.Order{}, err
	}

	subject, _ := ctxutil.GetSubject(ctx)
	slog.InfoContext(ctx, "[orderUsecase] Create", "orderID", order.ID, "productID", order.ProductID, "subject", subject)

	u.eventPublisher.PublishOrderConfirmed(ctx, domain.NewOrderConfirmed(order.ID, order.ProductID, order.Quantity, u.now()))

	return order, nil
}

func (u *orderUsecase) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return u.orderRepo.GetByID(ctx, id)
}

func (u *orderUsecase) GetList(ctx context.Context, param domain.GetListRequest) ([]domain.Order, domain.Metadata, error) {
	orders, err := u.orderRepo.GetList(ctx, param)
	if err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] GetList", "getList", err)
		return nil, domain.Metadata{}, err
	}

	count, err := u.orderRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] GetList", "count", err)
		return nil, domain.Metadata{}, err
	}

	return orders, domain.NewMetadata(count, param), nil
}
