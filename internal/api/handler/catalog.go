package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daap14/catalog-api/internal/api/middleware"
	"github.com/daap14/catalog-api/internal/api/response"
	"github.com/daap14/catalog-api/internal/api/validation"
	"github.com/daap14/catalog-api/internal/apperror"
	"github.com/daap14/catalog-api/internal/catalog"
	"github.com/daap14/catalog-api/internal/store"
)

// MaxBodyBytes caps request bodies on catalog writes.
const MaxBodyBytes = 1 << 20

// CatalogHandler serves /catalogs for authenticated demo users.
type CatalogHandler struct {
	stores store.Factory
	errs   *response.ErrorHandler
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(stores store.Factory, errs *response.ErrorHandler) *CatalogHandler {
	return &CatalogHandler{stores: stores, errs: errs}
}

// service builds a catalog service over a store dedicated to this request.
func (h *CatalogHandler) service() *catalog.Service {
	st := h.stores()
	return catalog.NewService(st.Catalogs(), st.Members())
}

// List handles GET /catalogs.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	q, err := validation.ParseListQuery(r.URL.Query())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	result, err := h.service().List(r.Context(), owner, q)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Create handles POST /catalogs.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	in, err := validation.ParseCreateCatalog(body)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	svc := h.service()
	if err := svc.ValidateDemoUser(r.Context(), owner); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	c, err := svc.Create(r.Context(), owner, in)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, c)
}

// Get handles GET /catalogs/{catalog_id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	id, err := validation.ParseCatalogID(chi.URLParam(r, "catalog_id"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	c, err := h.service().Get(r.Context(), id, owner)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, c)
}

// Update handles PUT /catalogs/{catalog_id}.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	id, err := validation.ParseCatalogID(chi.URLParam(r, "catalog_id"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	in, err := validation.ParseUpdateCatalog(body)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	c, err := h.service().Update(r.Context(), id, owner, in)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, c)
}

// Delete handles DELETE /catalogs/{catalog_id}.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	id, err := validation.ParseCatalogID(chi.URLParam(r, "catalog_id"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if err := h.service().Delete(r.Context(), id, owner); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	response.NoContent(w)
}

// owner returns the authenticated demo user's id. The route middleware
// guarantees an identity; its absence is a wiring error.
func (h *CatalogHandler) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil || !identity.IsDemoUser() {
		h.errs.Handle(w, r, apperror.Internal(errors.New("catalog route reached without a demo user identity")))
		return uuid.Nil, false
	}
	return identity.ID, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.Validation(map[string]string{validation.FieldBody: "Request body must be at most 1 MiB"})
		}
		return nil, apperror.Validation(map[string]string{validation.FieldBody: "Request body could not be read"})
	}
	return body, nil
}
