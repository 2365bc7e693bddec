// Package rediscache wraps a catalog.Repository with a Redis read-through
// cache. Reads are served from Redis when possible; every successful write
// drops the list keys and the product key. Redis failures are logged and the
// call falls through to the wrapped repository.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

const DefaultTTL = 5 * time.Minute

// Config options for the cache
type Config struct {
	TTL    time.Duration
	Prefix string // key namespace, defaults to "catalog:"
	Logger *slog.Logger
}

// Repository decorates another repository with a Redis cache
type Repository struct {
	inner  catalog.Repository
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// New wraps inner with a cache backed by client
func New(inner catalog.Repository, client redis.Cmdable, config Config) *Repository {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.Prefix == "" {
		config.Prefix = "catalog:"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		inner:  inner,
		client: client,
		ttl:    config.TTL,
		prefix: config.Prefix,
		logger: config.Logger,
	}
}

func (r *Repository) productsKey() string { return r.prefix + "products" }
func (r *Repository) skusKey() string     { return r.prefix + "skus" }
func (r *Repository) productKey(id uuid.UUID) string {
	return r.prefix + "product:" + id.String()
}

// load decodes a cached value into dst. It reports false on a miss or any
// cache error.
func (r *Repository) load(ctx context.Context, key string, dst interface{}) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Warn("Cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (r *Repository) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("Cache write failed", "key", key, "error", err)
	}
}

func (r *Repository) invalidate(ctx context.Context, ids ...uuid.UUID) {
	keys := []string{r.productsKey(), r.skusKey()}
	for _, id := range ids {
		keys = append(keys, r.productKey(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("Cache invalidation failed", "keys", keys, "error", err)
	}
}

func (r *Repository) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	var cached []*catalog.Product
	if r.load(ctx, r.productsKey(), &cached) {
		return cached, nil
	}

	products, err := r.inner.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, r.productsKey(), products)
	return products, nil
}

func (r *Repository) ListSKUs(ctx context.Context) ([]string, error) {
	var cached []string
	if r.load(ctx, r.skusKey(), &cached) {
		return cached, nil
	}

	skus, err := r.inner.ListSKUs(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, r.skusKey(), skus)
	return skus, nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var cached catalog.Product
	if r.load(ctx, r.productKey(id), &cached) {
		return &cached, nil
	}

	product, err := r.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, r.productKey(id), product)
	return product, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *catalog.Product) error {
	if err := r.inner.CreateProduct(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx, product.ID)
	return nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *catalog.Product) error {
	if err := r.inner.UpdateProduct(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx, product.ID)
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	existed, err := r.inner.DeleteProduct(ctx, id)
	if err != nil {
		return false, err
	}
	r.invalidate(ctx, id)
	return existed, nil
}

var _ catalog.Repository = (*Repository)(nil)
