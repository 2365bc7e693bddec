package metrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/metrics"
)

func TestSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewSink(reg)
	require.NoError(t, err)

	ctx := context.Background()
	cause := errors.New("boom")
	p := &catalog.Product{ID: uuid.New()}

	require.NoError(t, sink.ProductCreated(ctx, p))
	require.NoError(t, sink.ProductUpdated(ctx, p))
	require.NoError(t, sink.ProductUpdated(ctx, p))
	require.NoError(t, sink.ProductDeleted(ctx, p.ID))
	require.NoError(t, sink.ImageUploadFailed(ctx, "k1", cause))
	require.NoError(t, sink.ImageDeleteFailed(ctx, "http://x/k2", cause))
	require.NoError(t, sink.ImageDeleteFailed(ctx, "http://x/k3", cause))
	require.NoError(t, sink.ImagesOrphaned(ctx, []string{"a", "b", "c"}))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += "/" + l.GetValue()
			}
			values[name] = m.GetCounter().GetValue()
		}
	}

	assert.Equal(t, 1.0, values["catalog_product_events_total/create"])
	assert.Equal(t, 2.0, values["catalog_product_events_total/update"])
	assert.Equal(t, 1.0, values["catalog_product_events_total/delete"])
	assert.Equal(t, 1.0, values["catalog_image_upload_failures_total"])
	assert.Equal(t, 2.0, values["catalog_image_delete_failures_total"])
	assert.Equal(t, 3.0, values["catalog_images_orphaned_total"])
}

func TestSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewSink(reg)
	require.NoError(t, err)

	_, err = metrics.NewSink(reg)
	assert.Error(t, err)
}
