package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/metrics"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/memory"
	repopg "github.com/tendant/simple-catalog/pkg/catalog/repo/postgres"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/rediscache"
	fsstorage "github.com/tendant/simple-catalog/pkg/catalog/storage/fs"
	memorystorage "github.com/tendant/simple-catalog/pkg/catalog/storage/memory"
	s3storage "github.com/tendant/simple-catalog/pkg/catalog/storage/s3"
)

// Components are the wired runtime pieces built from a ServerConfig
type Components struct {
	Service  catalog.Service
	Registry *prometheus.Registry

	// Images serves stored images under /images when the blob store is local
	// (memory or fs); nil for s3
	Images http.Handler

	// ImagesDir is set when images live on the local filesystem
	ImagesDir string

	closers []func()
}

// Close releases pools and clients in reverse order of creation
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// NewLogger builds the process logger: colored text in development, JSON otherwise
func (c *ServerConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	if c.IsDevelopment() {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// BuildService creates the catalog service and its dependencies from the configuration
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	comps := &Components{Registry: prometheus.NewRegistry()}

	comps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repo, err := c.buildRepository(ctx, comps, logger)
	if err != nil {
		comps.Close()
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildBlobStore(ctx, comps)
	if err != nil {
		comps.Close()
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	metricsSink, err := metrics.NewSink(comps.Registry)
	if err != nil {
		comps.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	sinks := catalog.MultiEventSink{metricsSink}
	if c.IsDevelopment() {
		sinks = append(sinks, catalog.NewLogEventSink(logger))
	}

	svc, err := catalog.New(
		catalog.WithRepository(repo),
		catalog.WithBlobStore(store),
		catalog.WithEventSink(sinks),
		catalog.WithLogger(logger),
		catalog.WithUploadPolicy(c.Upload),
	)
	if err != nil {
		comps.Close()
		return nil, err
	}
	comps.Service = svc

	return comps, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context, comps *Components, logger *slog.Logger) (catalog.Repository, error) {
	var repo catalog.Repository

	switch c.DatabaseType {
	case "memory":
		repo = memory.New()
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		comps.closers = append(comps.closers, pool.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("database ping failed: %w", err)
		}

		pg := repopg.NewWithPool(pool)
		if c.AutoMigrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				return nil, err
			}
		}
		repo = pg
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		comps.closers = append(comps.closers, func() { client.Close() })

		repo = rediscache.New(repo, client, rediscache.Config{TTL: c.CacheTTL, Logger: logger})
	}

	return repo, nil
}

// buildBlobStore creates a BlobStore based on the storage configuration
func (c *ServerConfig) buildBlobStore(ctx context.Context, comps *Components) (catalog.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		store := memorystorage.New(c.ImagesURL())
		comps.Images = store
		return store, nil

	case "fs":
		store, err := fsstorage.New(fsstorage.Config{
			BaseDir:   c.Storage.BaseDir,
			URLPrefix: c.ImagesURL(),
		})
		if err != nil {
			return nil, err
		}
		comps.ImagesDir = store.BaseDir()
		comps.Images = http.FileServer(http.Dir(store.BaseDir()))
		return store, nil

	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			PublicBaseURL:          c.Storage.PublicBaseURL,
			CreateBucketIfNotExist: c.Storage.CreateBucketIfNotExist,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}
