package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrMemberNotFound is returned when no active membership row matches.
var ErrMemberNotFound = errors.New("member not found")

// MemberRepository looks up active rows in the two membership tables.
type MemberRepository interface {
	FindActiveDemoUser(ctx context.Context, id uuid.UUID) (*Member, error)
	FindActiveEndUser(ctx context.Context, id uuid.UUID) (*Member, error)
}

// TokenVerifier resolves a bearer token to a subject via the identity service.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Subject, error)
}
