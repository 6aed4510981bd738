package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no active catalog matches id and owner.
var ErrNotFound = errors.New("catalog not found")

// ErrDuplicateName is returned when the store itself rejects a duplicate name.
var ErrDuplicateName = errors.New("catalog name already exists")

// Repository provides owner-scoped operations on the product_catalogs table.
// Every read filters on is_active = true.
type Repository interface {
	List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (*ListResult, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (*Catalog, error)
	NameTaken(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, c *Catalog) error
	Update(ctx context.Context, id, ownerID uuid.UUID, fields UpdateFields) (*Catalog, error)
	SoftDelete(ctx context.Context, id, ownerID uuid.UUID) error
}
