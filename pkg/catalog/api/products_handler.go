package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

const (
	// imagesField is the multipart field carrying image files
	imagesField = "images"

	defaultMaxMemory = 32 << 20
)

// ProductsHandler serves the product catalog under /api/products
type ProductsHandler struct {
	service   catalog.Service
	modify    *RateLimiter
	maxMemory int64
}

// HandlerConfig tunes the products handler
type HandlerConfig struct {
	// ModifyLimiter, when set, guards create, update and delete
	ModifyLimiter *RateLimiter

	// MaxMemory is the multipart memory threshold before parts spill to disk
	MaxMemory int64
}

// NewProductsHandler creates a new products handler
func NewProductsHandler(service catalog.Service, config HandlerConfig) *ProductsHandler {
	if config.MaxMemory <= 0 {
		config.MaxMemory = defaultMaxMemory
	}
	return &ProductsHandler{
		service:   service,
		modify:    config.ModifyLimiter,
		maxMemory: config.MaxMemory,
	}
}

// Routes returns the routes for products. Static paths are registered before
// the {id} routes.
func (h *ProductsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListProducts)
	r.Get("/skus/existing", h.ListSKUs)
	r.Get("/{id}", h.GetProduct)

	r.Group(func(r chi.Router) {
		r.Use(h.modify.Middleware)
		r.Post("/", h.CreateProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})

	return r
}

func (h *ProductsHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, "Failed to fetch products", err)
		return
	}
	render.JSON(w, r, products)
}

func (h *ProductsHandler) ListSKUs(w http.ResponseWriter, r *http.Request) {
	skus, err := h.service.ListSKUs(r.Context())
	if err != nil {
		writeError(w, r, "Failed to fetch SKUs", err)
		return
	}
	render.JSON(w, r, skus)
}

func (h *ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, "Failed to fetch product", err)
		return
	}
	render.JSON(w, r, product)
}

func (h *ProductsHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	if form.Price == nil {
		writeBadRequest(w, r, "price", "is required")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), catalog.CreateProductRequest{
		SKU:   form.SKU,
		Name:  form.Name,
		Price: *form.Price,
		Files: form.Files,
	})
	if err != nil {
		writeError(w, r, "Failed to create product", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, product)
}

func (h *ProductsHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	req := catalog.UpdateProductRequest{
		ID:             id,
		SKU:            form.SKU,
		Name:           form.Name,
		Files:          form.Files,
		ImagesToDelete: form.ImagesToDelete,
	}
	if form.Price != nil {
		req.Price = *form.Price
	}

	product, err := h.service.UpdateProduct(r.Context(), req)
	if err != nil {
		writeError(w, r, "Failed to update product", err)
		return
	}
	render.JSON(w, r, product)
}

func (h *ProductsHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	existed, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, "Failed to delete product", err)
		return
	}
	if !existed {
		writeError(w, r, "Product not found", catalog.ErrProductNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, r, "id", "must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// productForm is the decoded body of a create or update request
type productForm struct {
	SKU            string           `json:"sku"`
	Name           string           `json:"name"`
	Price          *decimal.Decimal `json:"price"`
	ImagesToDelete []string         `json:"imagesToDelete"`
	Files          []catalog.File   `json:"-"`
}

// parseForm reads a multipart, urlencoded or JSON body. It writes the error
// response itself and reports false on failure.
func (h *ProductsHandler) parseForm(w http.ResponseWriter, r *http.Request) (*productForm, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var form *productForm
	var err error
	switch mediaType {
	case "application/json":
		form = &productForm{}
		err = json.NewDecoder(r.Body).Decode(form)
	case "multipart/form-data":
		if err = r.ParseMultipartForm(h.maxMemory); err == nil {
			form, err = readValues(r)
		}
	default:
		if err = r.ParseForm(); err == nil {
			form, err = readValues(r)
		}
	}

	if err != nil {
		var tooLarge *http.MaxBytesError
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, "Invalid request", err)
			return nil, false
		}
		if errors.As(err, &tooLarge) {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, ErrorResponse{Error: "Request body too large", Details: err.Error()})
			return nil, false
		}
		writeError(w, r, "Invalid request", &catalog.ValidationError{Fields: map[string]string{"body": err.Error()}})
		return nil, false
	}

	form.SKU = strings.TrimSpace(form.SKU)
	form.Name = strings.TrimSpace(form.Name)
	return form, true
}

func readValues(r *http.Request) (*productForm, error) {
	form := &productForm{
		SKU:  r.FormValue("sku"),
		Name: r.FormValue("name"),
	}

	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, &catalog.ValidationError{Fields: map[string]string{"price": "must be a number"}}
		}
		form.Price = &price
	}

	toDelete, err := parseImagesToDelete(r.Form["imagesToDelete"])
	if err != nil {
		return nil, err
	}
	form.ImagesToDelete = toDelete

	if r.MultipartForm == nil {
		return form, nil
	}
	for _, fh := range r.MultipartForm.File[imagesField] {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		form.Files = append(form.Files, catalog.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return form, nil
}

// parseImagesToDelete accepts a JSON array in a single field, or the field
// repeated once per locator.
func parseImagesToDelete(values []string) ([]string, error) {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var out []string
		if err := json.Unmarshal([]byte(values[0]), &out); err != nil {
			return nil, &catalog.ValidationError{Fields: map[string]string{"imagesToDelete": "must be a JSON array of strings"}}
		}
		return out, nil
	}

	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
