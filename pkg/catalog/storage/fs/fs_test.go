package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
	fsstorage "github.com/tendant/simple-catalog/pkg/catalog/storage/fs"
)

func TestFSBackend(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "images")
	backend, err := fsstorage.New(fsstorage.Config{BaseDir: baseDir, URLPrefix: "http://localhost:8080/images/"})
	require.NoError(t, err)

	ctx := context.Background()
	key := "1700000000000-abcd1234-shoe.png"

	t.Run("Upload", func(t *testing.T) {
		err := backend.Upload(ctx, strings.NewReader("png-bytes"), catalog.UploadParams{ObjectKey: key, MimeType: "image/png"})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(baseDir, key))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("Upload does not overwrite", func(t *testing.T) {
		err := backend.Upload(ctx, strings.NewReader("other"), catalog.UploadParams{ObjectKey: key})
		assert.ErrorIs(t, err, catalog.ErrObjectExists)
	})

	t.Run("Upload rejects nested keys", func(t *testing.T) {
		err := backend.Upload(ctx, strings.NewReader("x"), catalog.UploadParams{ObjectKey: "../escape.png"})
		assert.Error(t, err)
		_, statErr := os.Stat(filepath.Join(filepath.Dir(baseDir), "escape.png"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("GetPublicURL", func(t *testing.T) {
		assert.Equal(t, "http://localhost:8080/images/"+key, backend.GetPublicURL(key))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, key))
		_, err := os.Stat(filepath.Join(baseDir, key))
		assert.True(t, os.IsNotExist(err))

		assert.ErrorIs(t, backend.Delete(ctx, key), catalog.ErrObjectNotFound)
	})
}

func TestFSBackend_Config(t *testing.T) {
	_, err := fsstorage.New(fsstorage.Config{URLPrefix: "http://x"})
	assert.Error(t, err)

	_, err = fsstorage.New(fsstorage.Config{BaseDir: t.TempDir()})
	assert.Error(t, err)
}
