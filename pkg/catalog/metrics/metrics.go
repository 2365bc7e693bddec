// Package metrics exposes catalog events as Prometheus counters.
package metrics

import (
	"context"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

const namespace = "catalog"

// Sink is a catalog.EventSink that counts events
type Sink struct {
	products       *prometheus.CounterVec
	uploadFailures prometheus.Counter
	deleteFailures prometheus.Counter
	orphaned       prometheus.Counter
}

// NewSink creates the counters and registers them with reg
func NewSink(reg prometheus.Registerer) (*Sink, error) {
	s := &Sink{
		products: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_events_total",
			Help:      "Product lifecycle events by operation.",
		}, []string{"op"}),
		uploadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_upload_failures_total",
			Help:      "Image files that could not be stored.",
		}),
		deleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_delete_failures_total",
			Help:      "Image blobs that could not be removed.",
		}),
		orphaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_orphaned_total",
			Help:      "Uploaded images left without a product row.",
		}),
	}

	for _, c := range []prometheus.Collector{s.products, s.uploadFailures, s.deleteFailures, s.orphaned} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sink) ProductCreated(ctx context.Context, product *catalog.Product) error {
	s.products.WithLabelValues("create").Inc()
	return nil
}

func (s *Sink) ProductUpdated(ctx context.Context, product *catalog.Product) error {
	s.products.WithLabelValues("update").Inc()
	return nil
}

func (s *Sink) ProductDeleted(ctx context.Context, productID uuid.UUID) error {
	s.products.WithLabelValues("delete").Inc()
	return nil
}

func (s *Sink) ImageUploadFailed(ctx context.Context, objectKey string, cause error) error {
	s.uploadFailures.Inc()
	return nil
}

func (s *Sink) ImageDeleteFailed(ctx context.Context, locator string, cause error) error {
	s.deleteFailures.Inc()
	return nil
}

func (s *Sink) ImagesOrphaned(ctx context.Context, locators []string) error {
	s.orphaned.Add(float64(len(locators)))
	return nil
}

var _ catalog.EventSink = (*Sink)(nil)
