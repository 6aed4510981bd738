// Package store hands out per-request access to catalog and membership data
// over one of the supported backends.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daap14/catalog-api/internal/auth"
	"github.com/daap14/catalog-api/internal/catalog"
	"github.com/daap14/catalog-api/internal/supabase"
)

// Backend names accepted by STORE_BACKEND.
const (
	BackendPostgREST = "postgrest"
	BackendPostgres  = "postgres"
)

// Store groups the repositories one request needs.
type Store interface {
	Catalogs() catalog.Repository
	Members() auth.MemberRepository
	Ping(ctx context.Context) error
}

// Factory returns a fresh Store. Handlers call it once per request; Stores
// are never shared between requests.
type Factory func() Store

// MemberSource adapts the factory to the shape the auth service expects.
func (f Factory) MemberSource() auth.MemberSource {
	return func() auth.MemberRepository { return f().Members() }
}

type postgrestStore struct {
	client *supabase.Client
}

// NewPostgRESTFactory builds Stores over Supabase PostgREST, one client each.
func NewPostgRESTFactory(newClient supabase.Factory) Factory {
	return func() Store {
		return &postgrestStore{client: newClient()}
	}
}

func (s *postgrestStore) Catalogs() catalog.Repository {
	return catalog.NewPostgRESTRepository(s.client)
}

func (s *postgrestStore) Members() auth.MemberRepository {
	return auth.NewPostgRESTRepository(s.client)
}

func (s *postgrestStore) Ping(ctx context.Context) error {
	if _, err := s.client.From("product_catalogs").Select("id").Limit(0).Execute(ctx); err != nil {
		return fmt.Errorf("pinging postgrest: %w", err)
	}
	return nil
}

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresFactory builds Stores over a shared pgx pool.
func NewPostgresFactory(pool *pgxpool.Pool) Factory {
	return func() Store {
		return &postgresStore{pool: pool}
	}
}

func (s *postgresStore) Catalogs() catalog.Repository {
	return catalog.NewRepository(s.pool)
}

func (s *postgresStore) Members() auth.MemberRepository {
	return auth.NewRepository(s.pool)
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
