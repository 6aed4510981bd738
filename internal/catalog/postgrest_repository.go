package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/catalog-api/internal/supabase"
)

const table = "product_catalogs"

// PostgRESTRepository implements Repository over Supabase PostgREST.
type PostgRESTRepository struct {
	client *supabase.Client
}

// NewPostgRESTRepository creates a Repository backed by client.
func NewPostgRESTRepository(client *supabase.Client) Repository {
	return &PostgRESTRepository{client: client}
}

// List retrieves one page of the owner's active catalogs with an exact count.
func (r *PostgRESTRepository) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (*ListResult, error) {
	query := r.ownerScope(ownerID).Select("*").Count("exact")
	if q.Search != nil && *q.Search != "" {
		query = query.IMatch("name", regexContains(*q.Search))
	}
	query = query.
		Order(sortColumn(q.Sort), q.Order == OrderAsc).
		Order("id", q.Order == OrderAsc).
		Range(q.Offset(), q.Offset()+q.Limit-1)

	catalogs := []Catalog{}
	resp, err := query.ExecuteInto(ctx, &catalogs)
	if err != nil {
		if supabase.HasCode(err, supabase.CodeRangeUnsatisfied) {
			total, cerr := r.count(ctx, ownerID, q.Search)
			if cerr != nil {
				return nil, cerr
			}
			return &ListResult{Catalogs: []Catalog{}, Total: total}, nil
		}
		return nil, fmt.Errorf("listing catalogs: %w", err)
	}

	total := len(catalogs)
	if resp.Count != nil {
		total = *resp.Count
	}

	return &ListResult{Catalogs: catalogs, Total: total}, nil
}

// count returns the number of matching rows when the requested page lies
// past the end of the result set.
func (r *PostgRESTRepository) count(ctx context.Context, ownerID uuid.UUID, search *string) (int, error) {
	query := r.ownerScope(ownerID).Select("id").Count("exact").Limit(0)
	if search != nil && *search != "" {
		query = query.IMatch("name", regexContains(*search))
	}

	resp, err := query.Execute(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting catalogs: %w", err)
	}
	if resp.Count == nil {
		return 0, nil
	}
	return *resp.Count, nil
}

// Get retrieves a single active catalog owned by ownerID.
func (r *PostgRESTRepository) Get(ctx context.Context, id, ownerID uuid.UUID) (*Catalog, error) {
	var c Catalog
	_, err := r.ownerScope(ownerID).
		Select("*").
		Eq("id", id).
		Single().
		ExecuteInto(ctx, &c)
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	return &c, nil
}

// NameTaken reports whether another active catalog of the owner uses name.
func (r *PostgRESTRepository) NameTaken(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.ownerScope(ownerID).Select("id").Eq("name", name).Limit(1)
	if excludeID != nil {
		query = query.Neq("id", *excludeID)
	}

	var rows []struct {
		ID uuid.UUID `json:"id"`
	}
	if _, err := query.ExecuteInto(ctx, &rows); err != nil {
		return false, fmt.Errorf("checking catalog name: %w", err)
	}
	return len(rows) > 0, nil
}

type insertRow struct {
	DemoUserID  uuid.UUID      `json:"demo_user_id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	CatalogData map[string]any `json:"catalog_data"`
	IsActive    bool           `json:"is_active"`
	Version     int            `json:"version"`
}

// Create inserts a new active catalog at version 1.
func (r *PostgRESTRepository) Create(ctx context.Context, c *Catalog) error {
	row := insertRow{
		DemoUserID:  c.DemoUserID,
		Name:        c.Name,
		Description: c.Description,
		CatalogData: c.CatalogData,
		IsActive:    true,
		Version:     1,
	}

	var created Catalog
	_, err := r.client.From(table).Insert(row).Single().ExecuteInto(ctx, &created)
	if err != nil {
		if supabase.HasCode(err, supabase.CodeUniqueViolation) {
			return ErrDuplicateName
		}
		return fmt.Errorf("inserting catalog: %w", err)
	}

	*c = created
	return nil
}

// Update writes the non-nil fields and refreshes updated_at.
func (r *PostgRESTRepository) Update(ctx context.Context, id, ownerID uuid.UUID, fields UpdateFields) (*Catalog, error) {
	patch := map[string]any{"updated_at": now()}
	if fields.Name != nil {
		patch["name"] = *fields.Name
	}
	if fields.DescriptionSet {
		patch["description"] = fields.Description
	}
	if fields.CatalogData != nil {
		patch["catalog_data"] = fields.CatalogData
	}
	if fields.Version != nil {
		patch["version"] = *fields.Version
	}

	var c Catalog
	_, err := r.ownerScope(ownerID).
		Eq("id", id).
		Update(patch).
		Single().
		ExecuteInto(ctx, &c)
	if err != nil {
		switch {
		case supabase.IsNoRows(err):
			return nil, ErrNotFound
		case supabase.HasCode(err, supabase.CodeUniqueViolation):
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("updating catalog: %w", err)
	}
	return &c, nil
}

// SoftDelete marks an active catalog inactive.
func (r *PostgRESTRepository) SoftDelete(ctx context.Context, id, ownerID uuid.UUID) error {
	var rows []struct {
		ID uuid.UUID `json:"id"`
	}
	_, err := r.ownerScope(ownerID).
		Eq("id", id).
		Update(map[string]any{"is_active": false, "updated_at": now()}).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return fmt.Errorf("soft deleting catalog: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// ownerScope starts a query filtered to the owner's active rows.
func (r *PostgRESTRepository) ownerScope(ownerID uuid.UUID) *supabase.Query {
	return r.client.From(table).
		Eq("demo_user_id", ownerID).
		Eq("is_active", true)
}

// now is the timestamp sent for updated_at; PostgREST does not evaluate SQL
// functions in request bodies.
func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
