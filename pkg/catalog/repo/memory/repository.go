package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// Repository implements catalog.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*catalog.Product
	bySKU    map[string]uuid.UUID
	order    []uuid.UUID // insertion order, mirrors an unordered table scan
	now      func() time.Time
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		products: make(map[uuid.UUID]*catalog.Product),
		bySKU:    make(map[string]uuid.UUID),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*catalog.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.products[id].Clone())
	}
	return out, nil
}

func (r *Repository) ListSKUs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.products[id].SKU)
	}
	return out, nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p.Clone(), nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.bySKU[product.SKU]; taken {
		return catalog.ErrUniqueViolation
	}

	now := r.now()
	product.ID = uuid.New()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Images == nil {
		product.Images = []string{}
	}

	r.products[product.ID] = product.Clone()
	r.bySKU[product.SKU] = product.ID
	r.order = append(r.order, product.ID)
	return nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return catalog.ErrProductNotFound
	}
	if owner, taken := r.bySKU[product.SKU]; taken && owner != product.ID {
		return catalog.ErrUniqueViolation
	}

	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = r.now()
	if product.Images == nil {
		product.Images = []string{}
	}

	delete(r.bySKU, existing.SKU)
	r.bySKU[product.SKU] = product.ID
	r.products[product.ID] = product.Clone()
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return false, nil
	}

	delete(r.products, id)
	delete(r.bySKU, p.SKU)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

var _ catalog.Repository = (*Repository)(nil)
