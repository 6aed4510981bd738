package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrMissingToken is returned when the Authorization header is absent or not
// of the form "Bearer <token>".
var ErrMissingToken = errors.New("authorization header missing or invalid")

// ErrInvalidToken is returned when a token cannot be resolved to an active
// demo user or end user.
var ErrInvalidToken = errors.New("invalid or expired token")

// MemberSource yields a membership repository scoped to one request.
type MemberSource func() MemberRepository

// Service resolves bearer tokens to identities.
type Service struct {
	verifier TokenVerifier
	members  MemberSource
	log      zerolog.Logger
}

// NewService creates a new auth Service.
func NewService(verifier TokenVerifier, members MemberSource, log zerolog.Logger) *Service {
	return &Service{
		verifier: verifier,
		members:  members,
		log:      log,
	}
}

// ExtractBearerToken returns the token from an Authorization header value.
// The value must be exactly two space-separated parts with a case-sensitive
// "Bearer" scheme; anything else reports ok=false.
func ExtractBearerToken(header string) (token string, ok bool) {
	if header == "" {
		return "", false
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// Resolve extracts the bearer token from header and authenticates it.
func (s *Service) Resolve(ctx context.Context, header string) (*Identity, error) {
	token, ok := ExtractBearerToken(header)
	if !ok {
		return nil, ErrMissingToken
	}
	return s.Authenticate(ctx, token)
}

// Authenticate verifies token with the identity service, then classifies the
// subject by active membership: demo users first, end users second.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	subject, err := s.verifier.VerifyToken(ctx, token)
	if err != nil {
		s.log.Debug().Err(err).Msg("token verification failed")
		return nil, ErrInvalidToken
	}
	if subject == nil {
		return nil, ErrInvalidToken
	}

	members := s.members()

	demo, err := members.FindActiveDemoUser(ctx, subject.ID)
	if err == nil {
		return buildIdentity(demo, KindDemoUser), nil
	}
	if !errors.Is(err, ErrMemberNotFound) {
		s.log.Error().Err(err).Str("userId", subject.ID.String()).Msg("demo user lookup failed")
	}

	end, err := members.FindActiveEndUser(ctx, subject.ID)
	if err == nil {
		return buildIdentity(end, KindEndUser), nil
	}
	if !errors.Is(err, ErrMemberNotFound) {
		s.log.Error().Err(err).Str("userId", subject.ID.String()).Msg("end user lookup failed")
	}

	return nil, ErrInvalidToken
}

// buildIdentity constructs an Identity from a membership row.
func buildIdentity(m *Member, kind Kind) *Identity {
	identity := &Identity{
		ID:    m.ID,
		Email: m.Email,
		Kind:  kind,
	}
	if m.Name != nil {
		identity.Name = *m.Name
	}
	return identity
}

// String is used in log lines.
func (i *Identity) String() string {
	return fmt.Sprintf("%s(%s)", i.Kind, i.ID)
}
