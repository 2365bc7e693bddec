package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	policy := catalog.DefaultUploadPolicy()
	return ServerConfig{
		Port:         "5000",
		Environment:  "development",
		LogLevel:     "info",
		FrontendURL:  "*",
		DatabaseType: "memory",
		Storage:      StorageConfig{Type: "memory"},
		CacheTTL:     5 * time.Minute,
		Upload:       policy,
		RateLimit: RateLimitConfig{
			Requests:       100,
			Modifications:  20,
			Window:         15 * time.Minute,
			MaxRequestBody: maxRequestBody(policy),
		},
	}
}

// maxRequestBody sizes the body cap to a full batch of files plus 1 MiB for
// form fields. An unbounded policy dimension disables the cap.
func maxRequestBody(policy catalog.UploadPolicy) int64 {
	if policy.MaxFiles <= 0 || policy.MaxFileBytes <= 0 {
		return 0
	}
	return int64(policy.MaxFiles)*policy.MaxFileBytes + 1<<20
}

// ServerConfig represents server configuration for the catalog service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing
	LogLevel    string // debug, info, warn, error

	// FrontendURL is the allowed CORS origin
	FrontendURL string

	// PublicURL is the externally visible base of this server, used to build
	// locators for filesystem storage. Defaults to http://localhost:<port>.
	PublicURL string

	// Database configuration
	DatabaseType string // "memory", "postgres"
	DatabaseURL  string
	AutoMigrate  bool

	Storage StorageConfig

	// RedisURL enables the read-through cache when set
	RedisURL string
	CacheTTL time.Duration

	Upload    catalog.UploadPolicy
	RateLimit RateLimitConfig
}

// StorageConfig selects and configures the image blob store
type StorageConfig struct {
	Type string // "memory", "fs", "s3"

	// PublicBaseURL overrides the prefix of image locators
	PublicBaseURL string

	// fs
	BaseDir string

	// s3
	Bucket                 string
	Region                 string
	Endpoint               string
	AccessKeyID            string
	SecretAccessKey        string
	UsePathStyle           bool
	CreateBucketIfNotExist bool
}

// RateLimitConfig holds per-IP request limits and the body cap; zero
// disables a limit
type RateLimitConfig struct {
	Requests       int
	Modifications  int
	Window         time.Duration
	MaxRequestBody int64
}

// IsDevelopment reports whether verbose development behavior is enabled
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// ImagesURL is the public prefix local (memory or fs) images are served under
func (c *ServerConfig) ImagesURL() string {
	if c.Storage.PublicBaseURL != "" {
		return strings.TrimRight(c.Storage.PublicBaseURL, "/")
	}
	base := c.PublicURL
	if base == "" {
		base = "http://localhost:" + c.Port
	}
	return strings.TrimRight(base, "/") + "/images"
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.Environment {
	case "development", "production", "testing":
	default:
		return fmt.Errorf("environment must be development, production or testing, got: %s", c.Environment)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base directory is required for fs storage")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.Upload.MaxFiles < 0 {
		return errors.New("upload max files cannot be negative")
	}
	if c.Upload.MaxFileBytes < 0 {
		return errors.New("upload max file bytes cannot be negative")
	}
	if c.RateLimit.MaxRequestBody < 0 {
		return errors.New("max request body cannot be negative")
	}
	if c.Upload.UploadConcurrency < 0 {
		return errors.New("upload concurrency cannot be negative")
	}

	if (c.RateLimit.Requests > 0 || c.RateLimit.Modifications > 0) && c.RateLimit.Window <= 0 {
		return errors.New("rate limit window must be positive")
	}

	return nil
}

// ParseLevel maps a level name to a slog level
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return l, fmt.Errorf("invalid log level %q", level)
	}
	return l, nil
}
