package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// Backend is a filesystem implementation of the catalog.BlobStore interface
type Backend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // Public prefix the HTTP layer serves BaseDir under, e.g. http://host/images
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.URLPrefix == "" {
		return nil, errors.New("url prefix is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
	}, nil
}

// BaseDir returns the directory objects are written to
func (b *Backend) BaseDir() string {
	return b.baseDir
}

func (b *Backend) path(objectKey string) (string, error) {
	if objectKey == "" || objectKey != filepath.Base(objectKey) || objectKey == "." || objectKey == ".." {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return filepath.Join(b.baseDir, objectKey), nil
}

// Upload writes the content to a new file; an existing file is never replaced
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params catalog.UploadParams) error {
	filePath, err := b.path(params.ObjectKey)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return catalog.ErrObjectExists
	} else if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(filePath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(filePath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	return nil
}

func (b *Backend) GetPublicURL(objectKey string) string {
	return b.urlPrefix + "/" + url.PathEscape(objectKey)
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); errors.Is(err, os.ErrNotExist) {
		return catalog.ErrObjectNotFound
	} else if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

var _ catalog.BlobStore = (*Backend)(nil)
