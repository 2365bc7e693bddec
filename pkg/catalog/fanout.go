package catalog

import (
	"bytes"
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tendant/simple-catalog/pkg/catalog/objectkey"
)

// uploadResult is the outcome of one file in a batch.
type uploadResult struct {
	key     string
	locator string
	err     error
}

// uploadImages stores every file concurrently and waits for all of them.
// Locators come back in submission order; failed files are dropped and their
// errors returned alongside.
func (s *service) uploadImages(ctx context.Context, files []File) ([]string, []error) {
	if len(files) == 0 {
		return nil, nil
	}

	results := make([]uploadResult, len(files))
	var g errgroup.Group
	if s.policy.UploadConcurrency > 0 {
		g.SetLimit(s.policy.UploadConcurrency)
	}

	for i := range files {
		g.Go(func() error {
			results[i] = s.uploadOne(ctx, files[i])
			return nil
		})
	}
	_ = g.Wait()

	locators := make([]string, 0, len(files))
	var errs []error
	for i, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			s.logger.Warn("Image upload failed", "file_name", files[i].Name, "object_key", r.key, "error", r.err)
			s.notify(ctx, "image_upload_failed", func(sink EventSink) error {
				return sink.ImageUploadFailed(ctx, r.key, r.err)
			})
			continue
		}
		locators = append(locators, r.locator)
	}

	if len(errs) > 0 && len(locators) > 0 {
		s.logger.Warn("Partial upload failure", "uploaded", len(locators), "failed", len(errs))
	}

	return locators, errs
}

func (s *service) uploadOne(ctx context.Context, file File) uploadResult {
	key := s.keyGenerator.GenerateKey(file.Name)
	params := UploadParams{
		ObjectKey: key,
		MimeType:  file.ContentType,
		Size:      int64(len(file.Data)),
	}
	if err := s.blobStore.Upload(ctx, bytes.NewReader(file.Data), params); err != nil {
		return uploadResult{key: key, err: &StorageError{Key: key, Op: "upload", Err: err}}
	}
	return uploadResult{key: key, locator: s.blobStore.GetPublicURL(key)}
}

// deleteImages removes the blobs behind the locators concurrently. Failures
// are observed and counted, never returned.
func (s *service) deleteImages(ctx context.Context, productID uuid.UUID, locators []string) int {
	if len(locators) == 0 {
		return 0
	}

	errs := make([]error, len(locators))
	var g errgroup.Group
	if s.policy.UploadConcurrency > 0 {
		g.SetLimit(s.policy.UploadConcurrency)
	}

	for i := range locators {
		g.Go(func() error {
			key := objectkey.KeyFromLocator(locators[i])
			if key == "" {
				errs[i] = errors.New("locator has no object key")
				return nil
			}
			if err := s.blobStore.Delete(ctx, key); err != nil {
				errs[i] = &StorageError{Key: key, Op: "delete", Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		s.logger.Warn("Image delete failed", "product_id", productID.String(), "locator", locators[i], "error", err)
		s.notify(ctx, "image_delete_failed", func(sink EventSink) error {
			return sink.ImageDeleteFailed(ctx, locators[i], err)
		})
	}
	return failed
}

// notify fires an event and logs sink errors without failing the caller.
func (s *service) notify(ctx context.Context, event string, fire func(EventSink) error) {
	if s.eventSink == nil {
		return
	}
	if err := fire(s.eventSink); err != nil {
		s.logger.Warn("Event sink failed", "event", event, "error", err)
	}
}
