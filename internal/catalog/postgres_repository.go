package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `id, demo_user_id, name, description, catalog_data,
		       is_active, version, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// List retrieves one page of the owner's active catalogs.
func (r *PostgresRepository) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (*ListResult, error) {
	conditions := []string{"demo_user_id = $1", "is_active = true"}
	args := []any{ownerID}
	argIdx := 2

	if q.Search != nil && *q.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`name ILIKE $%d ESCAPE '\'`, argIdx))
		args = append(args, likeContains(*q.Search))
		argIdx++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM product_catalogs %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting catalogs: %w", err)
	}

	dataQuery := fmt.Sprintf(`
		SELECT %s
		FROM product_catalogs
		%s
		ORDER BY %s %s, id %s
		LIMIT $%d OFFSET $%d`,
		selectColumns, whereClause, sortColumn(q.Sort), sortDirection(q.Order), sortDirection(q.Order), argIdx, argIdx+1)

	args = append(args, q.Limit, q.Offset())

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("listing catalogs: %w", err)
	}
	defer rows.Close()

	catalogs := []Catalog{}
	for rows.Next() {
		c, err := scanCatalog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		catalogs = append(catalogs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog rows: %w", err)
	}

	return &ListResult{Catalogs: catalogs, Total: total}, nil
}

// Get retrieves a single active catalog owned by ownerID.
func (r *PostgresRepository) Get(ctx context.Context, id, ownerID uuid.UUID) (*Catalog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM product_catalogs
		WHERE id = $1 AND demo_user_id = $2 AND is_active = true`, selectColumns)

	return r.scanOne(ctx, query, id, ownerID)
}

// NameTaken reports whether another active catalog of the owner uses name.
func (r *PostgresRepository) NameTaken(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM product_catalogs
			WHERE demo_user_id = $1 AND name = $2 AND is_active = true
			  AND ($3::uuid IS NULL OR id <> $3::uuid)
		)`

	var taken bool
	if err := r.pool.QueryRow(ctx, query, ownerID, name, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("checking catalog name: %w", err)
	}
	return taken, nil
}

// Create inserts a new active catalog at version 1.
func (r *PostgresRepository) Create(ctx context.Context, c *Catalog) error {
	query := `
		INSERT INTO product_catalogs (demo_user_id, name, description, catalog_data, is_active, version)
		VALUES ($1, $2, $3, $4, true, 1)
		RETURNING id, is_active, version, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		c.DemoUserID,
		c.Name,
		c.Description,
		c.CatalogData,
	).Scan(&c.ID, &c.IsActive, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateName
		}
		return fmt.Errorf("inserting catalog: %w", err)
	}

	return nil
}

// Update writes the non-nil fields and refreshes updated_at.
func (r *PostgresRepository) Update(ctx context.Context, id, ownerID uuid.UUID, fields UpdateFields) (*Catalog, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *fields.Name)
		argIdx++
	}
	if fields.DescriptionSet {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, fields.Description)
		argIdx++
	}
	if fields.CatalogData != nil {
		setClauses = append(setClauses, fmt.Sprintf("catalog_data = $%d", argIdx))
		args = append(args, fields.CatalogData)
		argIdx++
	}
	if fields.Version != nil {
		setClauses = append(setClauses, fmt.Sprintf("version = $%d", argIdx))
		args = append(args, *fields.Version)
		argIdx++
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	args = append(args, id, ownerID)

	query := fmt.Sprintf(`
		UPDATE product_catalogs
		SET %s
		WHERE id = $%d AND demo_user_id = $%d AND is_active = true
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1, selectColumns)

	c, err := r.scanOne(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return c, nil
}

// SoftDelete marks an active catalog inactive.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id, ownerID uuid.UUID) error {
	query := `
		UPDATE product_catalogs
		SET is_active = false, updated_at = NOW()
		WHERE id = $1 AND demo_user_id = $2 AND is_active = true`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("soft deleting catalog: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// scanOne scans a single Catalog row. Returns ErrNotFound if no rows.
func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Catalog, error) {
	c, err := scanCatalog(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning catalog row: %w", err)
	}
	return c, nil
}

func scanCatalog(row pgx.Row) (*Catalog, error) {
	var c Catalog
	err := row.Scan(
		&c.ID, &c.DemoUserID, &c.Name, &c.Description, &c.CatalogData,
		&c.IsActive, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func sortColumn(f SortField) string {
	switch f {
	case SortUpdatedAt:
		return "updated_at"
	case SortName:
		return "name"
	default:
		return "created_at"
	}
}

func sortDirection(o SortOrder) string {
	if o == OrderAsc {
		return "ASC"
	}
	return "DESC"
}
