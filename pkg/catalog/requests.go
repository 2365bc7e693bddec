package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest contains parameters for creating a product
type CreateProductRequest struct {
	SKU   string          `validate:"required,max=100"`
	Name  string          `validate:"required,max=255"`
	Price decimal.Decimal `validate:"gte=0"`
	Files []File
}

// UpdateProductRequest contains parameters for updating a product.
//
// Empty SKU and Name keep the current values. A zero Price keeps the current
// price. ImagesToDelete lists locators to drop from the product; locators the
// product does not reference are ignored.
type UpdateProductRequest struct {
	ID             uuid.UUID
	SKU            string          `validate:"omitempty,max=100"`
	Name           string          `validate:"omitempty,max=255"`
	Price          decimal.Decimal `validate:"gte=0"`
	Files          []File
	ImagesToDelete []string
}
