package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/daap14/catalog-api/internal/supabase"
)

const memberColumns = "id,email,name,is_active"

type memberRow struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     *string   `json:"name"`
	IsActive bool      `json:"is_active"`
}

// PostgRESTRepository implements MemberRepository over Supabase PostgREST.
type PostgRESTRepository struct {
	client *supabase.Client
}

// NewPostgRESTRepository creates a MemberRepository backed by client.
func NewPostgRESTRepository(client *supabase.Client) MemberRepository {
	return &PostgRESTRepository{client: client}
}

// FindActiveDemoUser retrieves an active demo user by id.
func (r *PostgRESTRepository) FindActiveDemoUser(ctx context.Context, id uuid.UUID) (*Member, error) {
	return r.findActive(ctx, "demo_users", id)
}

// FindActiveEndUser retrieves an active end user by id.
func (r *PostgRESTRepository) FindActiveEndUser(ctx context.Context, id uuid.UUID) (*Member, error) {
	return r.findActive(ctx, "end_users", id)
}

func (r *PostgRESTRepository) findActive(ctx context.Context, table string, id uuid.UUID) (*Member, error) {
	var row memberRow
	_, err := r.client.From(table).
		Select(memberColumns).
		Eq("id", id).
		Eq("is_active", true).
		Single().
		ExecuteInto(ctx, &row)
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}

	return &Member{
		ID:       row.ID,
		Email:    row.Email,
		Name:     row.Name,
		IsActive: row.IsActive,
	}, nil
}
