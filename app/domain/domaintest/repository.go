// Package domaintest provides in-memory repositories with failure injection.
package domaintest

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"slices"
	"sync"

	"sales-inventory/app/domain"

	"github.com/gofrs/uuid/v5"
)

var errNegativeStock = errors.New("domaintest: stock check constraint violated")

// ProductRepository keeps products in a map. WithTransaction serializes
// callers and restores the previous state when fn fails.
type ProductRepository struct {
	txMu sync.Mutex

	mu       sync.Mutex
	products map[uuid.UUID]domain.Product
	gets     int

	GetErr    error
	LockErr   error
	UpdateErr error
	// AfterUpdate runs after every successful UpdateStock.
	AfterUpdate func(id uuid.UUID, stock int64)
}

func NewProductRepository(products ...domain.Product) *ProductRepository {
	r := &ProductRepository{products: make(map[uuid.UUID]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *ProductRepository) Stock(id uuid.UUID) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	return p.Stock, ok
}

// Gets counts GetByID calls that reached the repository.
func (r *ProductRepository) Gets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

func (r *ProductRepository) Create(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; ok {
		return errors.New("domaintest: duplicate product id")
	}
	r.products[product.ID] = product
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id uuid.UUID) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.GetErr != nil {
		return domain.Product{}, r.GetErr
	}
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepository) GetStock(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return 0, r.GetErr
	}
	p, ok := r.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return p.Stock, nil
}

func (r *ProductRepository) GetList(_ context.Context, param domain.GetListRequest) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := slices.SortedFunc(maps.Values(r.products), func(a, b domain.Product) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return page(all, param), nil
}

func (r *ProductRepository) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *ProductRepository) LockForUpdate(_ context.Context, id uuid.UUID, _ *sql.Tx) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.LockErr != nil {
		return domain.Product{}, r.LockErr
	}
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepository) UpdateStock(_ context.Context, id uuid.UUID, stock int64, _ *sql.Tx) error {
	r.mu.Lock()
	if r.UpdateErr != nil {
		r.mu.Unlock()
		return r.UpdateErr
	}
	if stock < 0 {
		r.mu.Unlock()
		return errNegativeStock
	}
	p, ok := r.products[id]
	if !ok {
		r.mu.Unlock()
		return domain.ErrNotFound
	}
	p.Stock = stock
	r.products[id] = p
	hook := r.AfterUpdate
	r.mu.Unlock()

	if hook != nil {
		hook(id, stock)
	}
	return nil
}

func (r *ProductRepository) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := maps.Clone(r.products)
	r.mu.Unlock()

	if err := fn(ctx, nil); err != nil {
		r.mu.Lock()
		r.products = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

type OrderRepository struct {
	mu     sync.Mutex
	orders []domain.Order

	CreateErr error
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Orders() []domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.orders)
}

func (r *OrderRepository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.orders = append(r.orders, order)
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, id uuid.UUID) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func (r *OrderRepository) GetList(_ context.Context, param domain.GetListRequest) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return page(slices.Clone(r.orders), param), nil
}

func (r *OrderRepository) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

func page[T any](items []T, param domain.GetListRequest) []T {
	start := int((param.Page - 1) * param.Limit)
	if start >= len(items) {
		return []T{}
	}
	end := min(start+int(param.Limit), len(items))
	return items[start:end]
}
