package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrValidation indicates a malformed request; concrete errors are *ValidationError
	ErrValidation = errors.New("validation failed")

	// ErrProductNotFound indicates the product id does not resolve
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateSKU indicates another product already uses the SKU
	ErrDuplicateSKU = errors.New("sku already exists")

	// ErrAllUploadsFailed indicates every file in a batch failed to store
	ErrAllUploadsFailed = errors.New("all image uploads failed")

	// ErrUniqueViolation is returned by repositories when a write breaks the SKU constraint
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrObjectExists is returned by blob stores when the object key is already taken
	ErrObjectExists = errors.New("object already exists")

	// ErrObjectNotFound is returned by blob stores when the object key does not exist
	ErrObjectNotFound = errors.New("object not found")
)

// ValidationError lists the offending fields of a request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ProductError represents an error related to product operations
type ProductError struct {
	ProductID uuid.UUID
	Op        string
	Err       error
}

func (e *ProductError) Error() string {
	if e.ProductID == uuid.Nil {
		return fmt.Sprintf("product operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("product operation %s failed for product %s: %v", e.Op, e.ProductID, e.Err)
}

func (e *ProductError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
