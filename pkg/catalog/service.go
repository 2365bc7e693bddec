package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the catalog
type Service interface {
	// ListProducts returns every product in natural SKU order
	ListProducts(ctx context.Context) ([]*Product, error)

	// ListSKUs returns the SKUs of all products
	ListSKUs(ctx context.Context) ([]string, error)

	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, req UpdateProductRequest) (*Product, error)

	// DeleteProduct reports whether the product existed. A missing id is not an error.
	DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error)
}
