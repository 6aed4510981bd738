package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements MemberRepository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new MemberRepository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) MemberRepository {
	return &PostgresRepository{pool: pool}
}

// FindActiveDemoUser retrieves an active demo user by id.
func (r *PostgresRepository) FindActiveDemoUser(ctx context.Context, id uuid.UUID) (*Member, error) {
	return r.findActive(ctx, "demo_users", id)
}

// FindActiveEndUser retrieves an active end user by id.
func (r *PostgresRepository) FindActiveEndUser(ctx context.Context, id uuid.UUID) (*Member, error) {
	return r.findActive(ctx, "end_users", id)
}

// findActive is shared by both lookups. table is never caller-supplied.
func (r *PostgresRepository) findActive(ctx context.Context, table string, id uuid.UUID) (*Member, error) {
	query := fmt.Sprintf(`
		SELECT id, email, name, is_active
		FROM %s
		WHERE id = $1 AND is_active = true`, table)

	var m Member
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Email, &m.Name, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}

	return &m, nil
}
