package handler

import (
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/daap14/catalog-api/internal/api/response"
)

// OpenAPIHandler serves the OpenAPI document as JSON.
type OpenAPIHandler struct {
	rawYAML []byte
	errs    *response.ErrorHandler

	once     sync.Once
	jsonSpec []byte
	jsonErr  error
}

// NewOpenAPIHandler creates a handler that converts yamlSpec to JSON on first use.
func NewOpenAPIHandler(yamlSpec []byte, errs *response.ErrorHandler) *OpenAPIHandler {
	return &OpenAPIHandler{rawYAML: yamlSpec, errs: errs}
}

func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.jsonSpec, h.jsonErr = yaml.YAMLToJSON(h.rawYAML)
	})

	if h.jsonErr != nil {
		h.errs.Handle(w, r, errors.Wrap(h.jsonErr, "converting OpenAPI document"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.jsonSpec)
}
