package catalog

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore defines the interface for image storage backends.
//
// Upload never overwrites: a key that already exists fails with
// ErrObjectExists. Delete of a missing key fails with ErrObjectNotFound.
type BlobStore interface {
	// Upload stores the reader's content under params.ObjectKey
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// GetPublicURL returns the non-expiring public locator for an object key
	GetPublicURL(objectKey string) string

	// Delete removes the object
	Delete(ctx context.Context, objectKey string) error
}

// Repository defines the interface for product persistence
type Repository interface {
	ListProducts(ctx context.Context) ([]*Product, error)
	ListSKUs(ctx context.Context) ([]string, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)

	// CreateProduct assigns ID, CreatedAt and UpdatedAt on the passed product.
	CreateProduct(ctx context.Context, product *Product) error

	// UpdateProduct writes every mutable field and refreshes UpdatedAt.
	UpdateProduct(ctx context.Context, product *Product) error

	// DeleteProduct reports whether a row was removed.
	DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error)
}

// EventSink receives catalog lifecycle notifications. Errors returned by a
// sink are logged and never fail the operation.
type EventSink interface {
	ProductCreated(ctx context.Context, product *Product) error
	ProductUpdated(ctx context.Context, product *Product) error
	ProductDeleted(ctx context.Context, productID uuid.UUID) error

	// ImageUploadFailed fires once per file that could not be stored
	ImageUploadFailed(ctx context.Context, objectKey string, cause error) error

	// ImageDeleteFailed fires once per locator whose blob could not be removed
	ImageDeleteFailed(ctx context.Context, locator string, cause error) error

	// ImagesOrphaned fires when uploaded blobs are left without a row
	ImagesOrphaned(ctx context.Context, locators []string) error
}
