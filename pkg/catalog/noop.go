package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) ProductCreated(ctx context.Context, product *Product) error {
	return nil
}

func (n *NoopEventSink) ProductUpdated(ctx context.Context, product *Product) error {
	return nil
}

func (n *NoopEventSink) ProductDeleted(ctx context.Context, productID uuid.UUID) error {
	return nil
}

func (n *NoopEventSink) ImageUploadFailed(ctx context.Context, objectKey string, cause error) error {
	return nil
}

func (n *NoopEventSink) ImageDeleteFailed(ctx context.Context, locator string, cause error) error {
	return nil
}

func (n *NoopEventSink) ImagesOrphaned(ctx context.Context, locators []string) error {
	return nil
}

// LogEventSink writes every event to a structured logger.
// Useful for development and debugging
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates a logging event sink; a nil logger uses slog.Default
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

func (l *LogEventSink) ProductCreated(ctx context.Context, product *Product) error {
	l.logger.InfoContext(ctx, "product created", "product_id", product.ID.String(), "sku", product.SKU)
	return nil
}

func (l *LogEventSink) ProductUpdated(ctx context.Context, product *Product) error {
	l.logger.InfoContext(ctx, "product updated", "product_id", product.ID.String(), "sku", product.SKU)
	return nil
}

func (l *LogEventSink) ProductDeleted(ctx context.Context, productID uuid.UUID) error {
	l.logger.InfoContext(ctx, "product deleted", "product_id", productID.String())
	return nil
}

func (l *LogEventSink) ImageUploadFailed(ctx context.Context, objectKey string, cause error) error {
	l.logger.WarnContext(ctx, "image upload failed", "object_key", objectKey, "error", cause)
	return nil
}

func (l *LogEventSink) ImageDeleteFailed(ctx context.Context, locator string, cause error) error {
	l.logger.WarnContext(ctx, "image delete failed", "locator", locator, "error", cause)
	return nil
}

func (l *LogEventSink) ImagesOrphaned(ctx context.Context, locators []string) error {
	l.logger.WarnContext(ctx, "images orphaned", "locators", locators)
	return nil
}

// MultiEventSink forwards each event to every sink and joins their errors.
type MultiEventSink []EventSink

func (m MultiEventSink) each(fire func(EventSink) error) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := fire(sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiEventSink) ProductCreated(ctx context.Context, product *Product) error {
	return m.each(func(s EventSink) error { return s.ProductCreated(ctx, product) })
}

func (m MultiEventSink) ProductUpdated(ctx context.Context, product *Product) error {
	return m.each(func(s EventSink) error { return s.ProductUpdated(ctx, product) })
}

func (m MultiEventSink) ProductDeleted(ctx context.Context, productID uuid.UUID) error {
	return m.each(func(s EventSink) error { return s.ProductDeleted(ctx, productID) })
}

func (m MultiEventSink) ImageUploadFailed(ctx context.Context, objectKey string, cause error) error {
	return m.each(func(s EventSink) error { return s.ImageUploadFailed(ctx, objectKey, cause) })
}

func (m MultiEventSink) ImageDeleteFailed(ctx context.Context, locator string, cause error) error {
	return m.each(func(s EventSink) error { return s.ImageDeleteFailed(ctx, locator, cause) })
}

func (m MultiEventSink) ImagesOrphaned(ctx context.Context, locators []string) error {
	return m.each(func(s EventSink) error { return s.ImagesOrphaned(ctx, locators) })
}
