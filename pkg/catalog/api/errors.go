package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeError maps service errors to status codes. summary is the message used
// for unexpected failures.
func writeError(w http.ResponseWriter, r *http.Request, summary string, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: summary, Details: err.Error()}

	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp = ErrorResponse{Error: "Invalid request", Details: err.Error(), Fields: verr.Fields}
	case errors.Is(err, catalog.ErrDuplicateSKU):
		status = http.StatusConflict
		resp = ErrorResponse{Error: "SKU already exists. Please use a unique SKU."}
	case errors.Is(err, catalog.ErrProductNotFound):
		status = http.StatusNotFound
		resp = ErrorResponse{Error: "Product not found"}
	case errors.Is(err, catalog.ErrAllUploadsFailed):
		status = http.StatusBadGateway
		resp = ErrorResponse{Error: "Failed to upload images", Details: err.Error()}
	}

	if status >= http.StatusInternalServerError {
		slog.Error(summary, "method", r.Method, "path", r.URL.Path, "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, field, message string) {
	writeError(w, r, "Invalid request", &catalog.ValidationError{Fields: map[string]string{field: message}})
}
