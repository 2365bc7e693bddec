package memory

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// DefaultBaseURL prefixes locators when no public base URL is given. Real
// deployments pass the URL the Backend itself is served under.
const DefaultBaseURL = "memory://images"

type object struct {
	data     []byte
	mimeType string
}

// Backend is an in-memory implementation of the catalog.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
}

// New creates a new in-memory storage backend. Locators are built as
// baseURL + "/" + key.
func New(baseURL string) *Backend {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Backend{
		objects: make(map[string]object),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload stores the content unless the key is already taken
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params catalog.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[params.ObjectKey]; exists {
		return catalog.ErrObjectExists
	}
	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	b.objects[params.ObjectKey] = object{data: data, mimeType: mimeType}
	return nil
}

func (b *Backend) GetPublicURL(objectKey string) string {
	return b.baseURL + "/" + url.PathEscape(objectKey)
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return catalog.ErrObjectNotFound
	}
	delete(b.objects, objectKey)
	return nil
}

// ServeHTTP serves a stored object by the last segment of the request path,
// so the Backend can sit behind http.StripPrefix at its public base URL.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	data, mimeType, ok := b.Object(path.Base(r.URL.Path))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write(data)
}

// Object returns a copy of the stored bytes and MIME type
func (b *Backend) Object(objectKey string) ([]byte, string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	o, ok := b.objects[objectKey]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), o.data...), o.mimeType, true
}

// Keys lists the stored object keys in sorted order
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ catalog.BlobStore = (*Backend)(nil)
