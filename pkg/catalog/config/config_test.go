package config

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 10, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxFileBytes)
	assert.Equal(t, "image/", cfg.Upload.ContentTypePrefix)
	assert.True(t, cfg.IsDevelopment())
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		wantError bool
		check     func(t *testing.T, cfg *ServerConfig)
	}{
		{
			name: "port and environment",
			opts: []Option{WithPort("8081"), WithEnvironment("testing")},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "8081", cfg.Port)
				assert.False(t, cfg.IsDevelopment())
			},
		},
		{
			name:      "empty port",
			opts:      []Option{WithPort("")},
			wantError: true,
		},
		{
			name:      "unknown environment",
			opts:      []Option{WithEnvironment("staging")},
			wantError: true,
		},
		{
			name:      "postgres without url",
			opts:      []Option{WithDatabase("postgres", "")},
			wantError: true,
		},
		{
			name: "s3 with endpoint",
			opts: []Option{WithS3Storage("bucket", "us-west-2"), WithS3Endpoint("http://minio:9000", true)},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "s3", cfg.Storage.Type)
				assert.Equal(t, "http://minio:9000", cfg.Storage.Endpoint)
				assert.True(t, cfg.Storage.UsePathStyle)
			},
		},
		{
			name:      "s3 endpoint without s3 storage",
			opts:      []Option{WithS3Endpoint("http://minio:9000", true)},
			wantError: true,
		},
		{
			name: "upload limits",
			opts: []Option{WithUploadLimits(2, 1024)},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, 2, cfg.Upload.MaxFiles)
				assert.Equal(t, int64(2*1024+1<<20), cfg.RateLimit.MaxRequestBody)
			},
		},
		{
			name: "unbounded file count drops body cap",
			opts: []Option{WithUploadLimits(0, 1024)},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Zero(t, cfg.Upload.MaxFiles)
				assert.Zero(t, cfg.RateLimit.MaxRequestBody)
			},
		},
		{
			name:      "negative upload limits",
			opts:      []Option{WithUploadLimits(-1, 1024)},
			wantError: true,
		},
		{
			name: "no rate limit",
			opts: []Option{WithoutRateLimit()},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Zero(t, cfg.RateLimit.Requests)
				assert.Zero(t, cfg.RateLimit.Modifications)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.opts...)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestImagesURL(t *testing.T) {
	cfg, err := Load(WithPort("7000"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:7000/images", cfg.ImagesURL())

	cfg.PublicURL = "https://api.example.com/"
	assert.Equal(t, "https://api.example.com/images", cfg.ImagesURL())

	cfg.Storage.PublicBaseURL = "https://cdn.example.com/img/"
	assert.Equal(t, "https://cdn.example.com/img", cfg.ImagesURL())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	cfg, err := Load(WithEnvironment("production"))
	require.NoError(t, err)
	cfg.NewLogger(&buf).Info("hello", "sku", "A1")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"sku":"A1"`)

	buf.Reset()
	cfg.Environment = "development"
	cfg.LogLevel = "warn"
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestBuildService(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		comps, err := cfg.BuildService(ctx, nil)
		require.NoError(t, err)
		defer comps.Close()
		assert.NotNil(t, comps.Service)
		assert.Empty(t, comps.ImagesDir)
		assert.NotNil(t, comps.Images)

		p, err := comps.Service.CreateProduct(ctx, catalog.CreateProductRequest{
			SKU:   "M1",
			Name:  "x",
			Price: decimal.NewFromInt(1),
			Files: []catalog.File{{Name: "a.png", ContentType: "image/png", Data: []byte("png")}},
		})
		require.NoError(t, err)
		require.Len(t, p.Images, 1)
		assert.True(t, strings.HasPrefix(p.Images[0], "http://localhost:5000/images/"))
	})

	t.Run("memory with public url", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		cfg.PublicURL = "https://api.example.com"

		comps, err := cfg.BuildService(ctx, nil)
		require.NoError(t, err)
		defer comps.Close()

		p, err := comps.Service.CreateProduct(ctx, catalog.CreateProductRequest{
			SKU:   "M1",
			Name:  "x",
			Price: decimal.NewFromInt(1),
			Files: []catalog.File{{Name: "a.png", ContentType: "image/png", Data: []byte("png")}},
		})
		require.NoError(t, err)
		require.Len(t, p.Images, 1)
		assert.True(t, strings.HasPrefix(p.Images[0], "https://api.example.com/images/"))
	})

	t.Run("filesystem with cache", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "images")
		cfg, err := Load(
			WithFilesystemStorage(dir),
			WithRedisCache("redis://127.0.0.1:1/0", 0),
			WithPort("7000"),
		)
		require.NoError(t, err)

		comps, err := cfg.BuildService(ctx, nil)
		require.NoError(t, err)
		defer comps.Close()
		assert.Equal(t, dir, comps.ImagesDir)

		p, err := comps.Service.CreateProduct(ctx, catalog.CreateProductRequest{
			SKU:   "A1",
			Name:  "x",
			Price: decimal.NewFromInt(1),
			Files: []catalog.File{{Name: "a.png", ContentType: "image/png", Data: []byte("png")}},
		})
		require.NoError(t, err)
		require.Len(t, p.Images, 1)
		assert.True(t, strings.HasPrefix(p.Images[0], "http://localhost:7000/images/"))

		families, err := comps.Registry.Gather()
		require.NoError(t, err)
		var names []string
		for _, mf := range families {
			names = append(names, mf.GetName())
		}
		assert.Contains(t, names, "catalog_product_events_total")
	})

	t.Run("invalid redis url", func(t *testing.T) {
		cfg, err := Load(WithRedisCache("not-a-url", 0))
		require.NoError(t, err)

		_, err = cfg.BuildService(ctx, nil)
		assert.Error(t, err)
	})
}
