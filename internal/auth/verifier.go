package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/daap14/catalog-api/internal/supabase"
)

// SupabaseVerifier implements TokenVerifier against Supabase Auth. When a JWT
// secret is configured, HS256 tokens are verified locally first; otherwise,
// or when local verification fails, the token is sent to /auth/v1/user.
type SupabaseVerifier struct {
	newClient supabase.Factory
	jwtSecret []byte
}

// NewSupabaseVerifier creates a verifier. jwtSecret may be empty.
func NewSupabaseVerifier(newClient supabase.Factory, jwtSecret string) *SupabaseVerifier {
	v := &SupabaseVerifier{newClient: newClient}
	if jwtSecret != "" {
		v.jwtSecret = []byte(jwtSecret)
	}
	return v
}

// VerifyToken resolves token to the subject it was issued for.
func (v *SupabaseVerifier) VerifyToken(ctx context.Context, token string) (*Subject, error) {
	if len(v.jwtSecret) > 0 {
		if s, err := v.verifyLocal(token); err == nil {
			return s, nil
		}
	}

	user, err := v.newClient().Auth().GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if user == nil || user.ID == "" {
		return nil, errors.New("identity service returned no user")
	}

	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing user id: %w", err)
	}

	return &Subject{ID: id, Email: user.Email}, nil
}

// sessionAudience is the aud claim Supabase puts on signed-in user tokens.
const sessionAudience = "authenticated"

func (v *SupabaseVerifier) verifyLocal(token string) (*Subject, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(sessionAudience),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("reading sub claim: %w", err)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("parsing sub claim: %w", err)
	}

	email, _ := claims["email"].(string)
	return &Subject{ID: id, Email: email}, nil
}
