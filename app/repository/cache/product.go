package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sales-inventory/app/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"
)

// Store is the subset of redis.Cmdable used by the cache.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// productRepository is a read-through cache in front of another
// ProductRepository. Only GetByID is cached; stock writes evict the key once
// their transaction has finished. A fill whose read started before the last
// eviction of that product is dropped, so it cannot restore an old row.
type productRepository struct {
	domain.ProductRepository
	store Store
	ttl   time.Duration

	mu   sync.Mutex
	gens map[uuid.UUID]uint64
}

func NewProductRepository(next domain.ProductRepository, store Store, ttl time.Duration) domain.ProductRepository {
	return &productRepository{
		ProductRepository: next,
		store:             store,
		ttl:               ttl,
		gens:              make(map[uuid.UUID]uint64),
	}
}

func (r *productRepository) generation(id uuid.UUID) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[id]
}

func productKey(id uuid.UUID) string {
	return "product:" + id.String()
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	key := productKey(id)

	raw, err := r.store.Get(ctx, key).Bytes()
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal(raw, &product); err == nil {
			return product, nil
		}
		slog.WarnContext(ctx, "[productCache] GetByID", "unmarshal", err, "key", key)
	} else if !errors.Is(err, redis.Nil) {
		slog.WarnContext(ctx, "[productCache] GetByID", "get", err, "key", key)
	}

	gen := r.generation(id)
	product, err := r.ProductRepository.GetByID(ctx, id)
	if err != nil {
		return product, err
	}

	data, err := json.Marshal(product)
	if err != nil {
		slog.WarnContext(ctx, "[productCache] GetByID", "marshal", err)
		return product, nil
	}
	r.fill(ctx, id, gen, data)

	return product, nil
}

func (r *productRepository) fill(ctx context.Context, id uuid.UUID, gen uint64, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := productKey(id)
	if r.gens[id] != gen {
		slog.DebugContext(ctx, "[productCache] fill", "skipped", "evicted during read", "key", key)
		return
	}
	if err := r.store.Set(ctx, key, data, r.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "[productCache] fill", "set", err, "key", key)
	}
}

type touchedKey struct{}

type touched struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int64, tx *sql.Tx) error {
	if err := r.ProductRepository.UpdateStock(ctx, id, stock, tx); err != nil {
		return err
	}
	if t, ok := ctx.Value(touchedKey{}).(*touched); ok {
		t.mu.Lock()
		t.ids = append(t.ids, id)
		t.mu.Unlock()
		return nil
	}
	r.evict(ctx, id)
	return nil
}

func (r *productRepository) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	t := &touched{}
	err := r.ProductRepository.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return fn(context.WithValue(ctx, touchedKey{}, t), tx)
	})
	for _, id := range t.ids {
		r.evict(ctx, id)
	}
	return err
}

func (r *productRepository) evict(ctx context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gens[id]++
	if err := r.store.Del(ctx, productKey(id)).Err(); err != nil {
		slog.WarnContext(ctx, "[productCache] evict", "del", err, "key", productKey(id))
	}
}
