package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithMemoryStorage keeps images in process memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage = StorageConfig{Type: "memory"}
		return nil
	}
}

// WithFilesystemStorage stores images under baseDir and serves them from /images
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: baseDir}
		return nil
	}
}

// WithS3Storage stores images in an S3 bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		c.Storage = StorageConfig{Type: "s3", Bucket: bucket, Region: region}
		return nil
	}
}

// WithS3Endpoint sets a custom S3 endpoint (for MinIO, LocalStack, etc.)
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		if c.Storage.Type != "s3" {
			return fmt.Errorf("S3 endpoint requires s3 storage, got: %s", c.Storage.Type)
		}
		c.Storage.Endpoint = endpoint
		c.Storage.UsePathStyle = usePathStyle
		return nil
	}
}

// WithRedisCache enables the read-through product cache
func WithRedisCache(redisURL string, ttl time.Duration) Option {
	return func(c *ServerConfig) error {
		if redisURL == "" {
			return fmt.Errorf("redis URL cannot be empty")
		}
		c.RedisURL = redisURL
		if ttl > 0 {
			c.CacheTTL = ttl
		}
		return nil
	}
}

// WithUploadLimits overrides the per-request upload policy. Zero leaves a
// dimension unbounded and drops the request body cap.
func WithUploadLimits(maxFiles int, maxFileBytes int64) Option {
	return func(c *ServerConfig) error {
		if maxFiles < 0 || maxFileBytes < 0 {
			return fmt.Errorf("upload limits cannot be negative, got %d files / %d bytes", maxFiles, maxFileBytes)
		}
		c.Upload.MaxFiles = maxFiles
		c.Upload.MaxFileBytes = maxFileBytes
		c.RateLimit.MaxRequestBody = maxRequestBody(c.Upload)
		return nil
	}
}

// WithoutRateLimit disables both request limiters
func WithoutRateLimit() Option {
	return func(c *ServerConfig) error {
		c.RateLimit.Requests = 0
		c.RateLimit.Modifications = 0
		return nil
	}
}
