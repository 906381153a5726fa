package usecase

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"sales-inventory/app/domain"

	"github.com/gofrs/uuid/v5"
)

type productUsecase struct {
	productRepo    domain.ProductRepository
	stockPublisher domain.StockPublisher
}

func NewProductUsecase(productRepo domain.ProductRepository, stockPublisher domain.StockPublisher) domain.ProductService {
	return &productUsecase{productRepo, stockPublisher}
}

func (u *productUsecase) Create(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	id, err := uuid.NewV4()
	if err != nil {
		slog.ErrorContext(ctx, "[productUsecase] Create", "uuid", err)
		return domain.Product{}, err
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.productRepo.Create(ctx, product); err != nil {
		slog.ErrorContext(ctx, "[productUsecase] Create", "createProduct", err)
		return domain.Product{}, err
	}

	u.publishStock(ctx, product)

	slog.InfoContext(ctx, "[productUsecase] Create", "productID", product.ID, "stock", product.Stock)
	return product, nil
}

func (u *productUsecase) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return u.productRepo.GetByID(ctx, id)
}

func (u *productUsecase) GetList(ctx context.Context, param domain.GetListRequest) ([]domain.Product, domain.Metadata, error) {
	products, err := u.productRepo.GetList(ctx, param)
	if err != nil {
		slog.ErrorContext(ctx, "[productUsecase] GetList", "getList", err)
		return nil, domain.Metadata{}, err
	}

	count, err := u.productRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "[productUsecase] GetList", "count", err)
		return nil, domain.Metadata{}, err
	}

	return products, domain.NewMetadata(count, param), nil
}

// Availability feeds order decisions, so it reads stock uncached.
func (u *productUsecase) Availability(ctx context.Context, id uuid.UUID, quantity int64) (domain.AvailabilityResponse, error) {
	stock, err := u.productRepo.GetStock(ctx, id)
	if err != nil {
		return domain.AvailabilityResponse{}, err
	}

	return domain.AvailabilityResponse{
		ProductID:    id,
		Available:    stock >= quantity,
		CurrentStock: stock,
	}, nil
}

func (u *productUsecase) ApplyOrderConfirmed(ctx context.Context, event domain.OrderConfirmed) (domain.Product, error) {
	var updated domain.Product

	err := u.productRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		product, err := u.productRepo.LockForUpdate(ctx, event.ProductID, tx)
		if err != nil {
			return err
		}

		product.Stock = max(0, product.Stock-int64(event.Quantity))
		if err := u.productRepo.UpdateStock(ctx, product.ID, product.Stock, tx); err != nil {
			return err
		}

		updated = product
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	u.publishStock(ctx, updated)

	slog.InfoContext(ctx, "[productUsecase] ApplyOrderConfirmed",
		"orderID", event.OrderID, "productID", updated.ID, "quantity", event.Quantity, "stock", updated.Stock)
	return updated, nil
}

// publishStock is best effort; the stock row is already committed.
func (u *productUsecase) publishStock(ctx context.Context, product domain.Product) {
	err := u.stockPublisher.PublishStockAvailable(ctx, domain.StockMessage{
		ProductID: product.ID,
		Available: product.Stock,
	})
	if err != nil {
		slog.WarnContext(ctx, "[productUsecase] publishStock", "publishStockAvailable", err)
	}
}
