package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-catalog/pkg/catalog/objectkey"
)

// UploadPolicy bounds what a single create or update may upload. Zero
// MaxFiles or MaxFileBytes leaves that dimension unbounded.
type UploadPolicy struct {
	MaxFiles          int
	MaxFileBytes      int64
	ContentTypePrefix string

	// UploadConcurrency caps in-flight blob operations per request; zero means unbounded
	UploadConcurrency int
}

// DefaultUploadPolicy returns the limits used when none are configured.
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxFiles:          10,
		MaxFileBytes:      5 << 20,
		ContentTypePrefix: "image/",
		UploadConcurrency: 4,
	}
}

// service implements the Service interface
type service struct {
	repository   Repository
	blobStore    BlobStore
	keyGenerator objectkey.Generator
	eventSink    EventSink
	logger       *slog.Logger
	policy       UploadPolicy
	now          func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the image storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithKeyGenerator overrides how object keys are derived from file names
func WithKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keyGenerator = gen
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithUploadPolicy replaces the default upload limits
func WithUploadPolicy(policy UploadPolicy) Option {
	return func(s *service) {
		s.policy = policy
	}
}

// WithClock sets the time source used by the default key generator
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		policy: DefaultUploadPolicy(),
		now:    time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.keyGenerator == nil {
		s.keyGenerator = &objectkey.TimestampGenerator{Now: s.now}
	}

	return s, nil
}

// Read operations

func (s *service) ListProducts(ctx context.Context) ([]*Product, error) {
	products, err := s.repository.ListProducts(ctx)
	if err != nil {
		return nil, &ProductError{Op: "list", Err: err}
	}
	return NaturalSort(products), nil
}

func (s *service) ListSKUs(ctx context.Context) ([]string, error) {
	skus, err := s.repository.ListSKUs(ctx)
	if err != nil {
		return nil, &ProductError{Op: "list_skus", Err: err}
	}
	return skus, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := s.repository.GetProduct(ctx, id)
	if err != nil {
		return nil, &ProductError{ProductID: id, Op: "get", Err: err}
	}
	return product, nil
}

// Mutations

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	locators, uploadErrs := s.uploadImages(ctx, req.Files)
	if len(req.Files) > 0 && len(locators) == 0 {
		return nil, &ProductError{
			Op:  "create",
			Err: fmt.Errorf("%w: %w", ErrAllUploadsFailed, errors.Join(uploadErrs...)),
		}
	}

	product := &Product{
		SKU:    req.SKU,
		Name:   req.Name,
		Price:  req.Price,
		Images: locators,
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	if err := s.repository.CreateProduct(ctx, product); err != nil {
		if len(locators) > 0 {
			s.logger.Warn("Uploaded images left without a product", "sku", req.SKU, "count", len(locators))
			s.notify(ctx, "images_orphaned", func(sink EventSink) error {
				return sink.ImagesOrphaned(ctx, locators)
			})
		}
		return nil, &ProductError{Op: "create", Err: translateRepoError(err)}
	}

	s.logger.Debug("Product created", "product_id", product.ID.String(), "sku", product.SKU, "images", len(product.Images))
	s.notify(ctx, "product_created", func(sink EventSink) error {
		return sink.ProductCreated(ctx, product)
	})

	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, req UpdateProductRequest) (*Product, error) {
	if err := s.validateUpdate(req); err != nil {
		return nil, err
	}

	current, err := s.repository.GetProduct(ctx, req.ID)
	if err != nil {
		return nil, &ProductError{ProductID: req.ID, Op: "update", Err: err}
	}

	uploaded, uploadErrs := s.uploadImages(ctx, req.Files)
	if len(req.Files) > 0 && len(uploaded) == 0 {
		return nil, &ProductError{
			ProductID: req.ID,
			Op:        "update",
			Err:       fmt.Errorf("%w: %w", ErrAllUploadsFailed, errors.Join(uploadErrs...)),
		}
	}

	drop := referencedLocators(current.Images, req.ImagesToDelete)
	if len(drop) > 0 {
		s.deleteImages(ctx, current.ID, drop)
	}

	updated := current.Clone()
	if req.SKU != "" {
		updated.SKU = req.SKU
	}
	if req.Name != "" {
		updated.Name = req.Name
	}
	if !req.Price.IsZero() {
		updated.Price = req.Price
	}
	updated.Images = mergeImages(current.Images, drop, uploaded)

	if err := s.repository.UpdateProduct(ctx, updated); err != nil {
		if len(uploaded) > 0 {
			s.logger.Warn("Uploaded images left without a product", "product_id", req.ID.String(), "count", len(uploaded))
			s.notify(ctx, "images_orphaned", func(sink EventSink) error {
				return sink.ImagesOrphaned(ctx, uploaded)
			})
		}
		return nil, &ProductError{ProductID: req.ID, Op: "update", Err: translateRepoError(err)}
	}

	s.logger.Debug("Product updated", "product_id", updated.ID.String(), "added", len(uploaded), "removed", len(drop))
	s.notify(ctx, "product_updated", func(sink EventSink) error {
		return sink.ProductUpdated(ctx, updated)
	})

	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	product, err := s.repository.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return false, nil
		}
		return false, &ProductError{ProductID: id, Op: "delete", Err: err}
	}

	if failed := s.deleteImages(ctx, id, product.Images); failed > 0 {
		s.logger.Warn("Product deleted with leftover images", "product_id", id.String(), "failed", failed)
	}

	existed, err := s.repository.DeleteProduct(ctx, id)
	if err != nil {
		return false, &ProductError{ProductID: id, Op: "delete", Err: err}
	}
	if !existed {
		return false, nil
	}

	s.notify(ctx, "product_deleted", func(sink EventSink) error {
		return sink.ProductDeleted(ctx, id)
	})

	return true, nil
}

// translateRepoError maps the repository's constraint signal to the
// caller-facing duplicate error.
func translateRepoError(err error) error {
	if errors.Is(err, ErrUniqueViolation) {
		return fmt.Errorf("%w: %w", ErrDuplicateSKU, err)
	}
	return err
}

// referencedLocators keeps the requested locators the product actually holds,
// without duplicates.
func referencedLocators(images, requested []string) []string {
	if len(requested) == 0 || len(images) == 0 {
		return nil
	}

	held := make(map[string]struct{}, len(images))
	for _, img := range images {
		held[img] = struct{}{}
	}

	var out []string
	for _, loc := range requested {
		if _, ok := held[loc]; !ok {
			continue
		}
		delete(held, loc)
		out = append(out, loc)
	}
	return out
}

// mergeImages returns previous minus drop, followed by added.
func mergeImages(previous, drop, added []string) []string {
	skip := make(map[string]struct{}, len(drop))
	for _, loc := range drop {
		skip[loc] = struct{}{}
	}

	out := make([]string, 0, len(previous)+len(added))
	for _, loc := range previous {
		if _, ok := skip[loc]; ok {
			continue
		}
		out = append(out, loc)
	}
	return append(out, added...)
}
