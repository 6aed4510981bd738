package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Catalog represents a row in the product_catalogs table.
type Catalog struct {
	ID          uuid.UUID      `json:"id"`
	DemoUserID  uuid.UUID      `json:"demo_user_id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	CatalogData map[string]any `json:"catalog_data"`
	IsActive    bool           `json:"is_active"`
	Version     int            `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SortField is a column catalogs may be ordered by.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortName      SortField = "name"
)

// SortFields lists the allowed sort columns in display order.
var SortFields = []SortField{SortCreatedAt, SortUpdatedAt, SortName}

// SortOrder is a sort direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Default list parameters.
const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 50
)

// ListQuery holds validated list parameters.
type ListQuery struct {
	Page   int
	Limit  int
	Search *string // partial match (ILIKE)
	Sort   SortField
	Order  SortOrder
}

// Offset returns the number of rows to skip.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ListResult holds one page of catalogs and the count of all matching rows.
type ListResult struct {
	Catalogs []Catalog
	Total    int
}

// Pagination is the pagination block of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ListResponse is the body of GET /catalogs.
type ListResponse struct {
	Catalogs   []Catalog  `json:"catalogs"`
	Pagination Pagination `json:"pagination"`
}

// CreateInput holds validated fields for a new catalog.
type CreateInput struct {
	Name        string
	Description *string
	CatalogData map[string]any
}

// UpdateInput holds validated fields for a partial update. Nil fields are
// absent from the request. Description is applied only when DescriptionSet
// is true, in which case nil clears it.
type UpdateInput struct {
	Name           *string
	Description    *string
	DescriptionSet bool
	CatalogData    map[string]any
}

// UpdateFields holds the columns a repository Update writes. Nil fields are
// not updated; updated_at is always refreshed.
type UpdateFields struct {
	Name           *string
	Description    *string
	DescriptionSet bool
	CatalogData    map[string]any
	Version        *int
}
