package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/catalog-api/internal/auth"
)

// --- Mocks ---

type mockVerifier struct {
	verifyFn func(ctx context.Context, token string) (*auth.Subject, error)
}

func (m *mockVerifier) VerifyToken(ctx context.Context, token string) (*auth.Subject, error) {
	return m.verifyFn(ctx, token)
}

type mockMembers struct {
	demoFn func(ctx context.Context, id uuid.UUID) (*auth.Member, error)
	endFn  func(ctx context.Context, id uuid.UUID) (*auth.Member, error)
}

func (m *mockMembers) FindActiveDemoUser(ctx context.Context, id uuid.UUID) (*auth.Member, error) {
	if m.demoFn != nil {
		return m.demoFn(ctx, id)
	}
	return nil, auth.ErrMemberNotFound
}

func (m *mockMembers) FindActiveEndUser(ctx context.Context, id uuid.UUID) (*auth.Member, error) {
	if m.endFn != nil {
		return m.endFn(ctx, id)
	}
	return nil, auth.ErrMemberNotFound
}

func newService(subject *auth.Subject, members *mockMembers) *auth.Service {
	verifier := &mockVerifier{verifyFn: func(context.Context, string) (*auth.Subject, error) {
		if subject == nil {
			return nil, errors.New("bad token")
		}
		return subject, nil
	}}
	return auth.NewService(verifier, func() auth.MemberRepository { return members }, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

// --- ExtractBearerToken ---

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"valid", "Bearer abc.def", "abc.def", true},
		{"empty", "", "", false},
		{"lowercase scheme", "bearer abc", "", false},
		{"basic scheme", "Basic abc", "", false},
		{"missing token", "Bearer", "", false},
		{"empty token", "Bearer ", "", false},
		{"extra part", "Bearer abc def", "", false},
		{"double space", "Bearer  abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := auth.ExtractBearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

// --- Authenticate ---

func TestAuthenticate_DemoUser(t *testing.T) {
	id := uuid.New()
	svc := newService(&auth.Subject{ID: id}, &mockMembers{
		demoFn: func(_ context.Context, got uuid.UUID) (*auth.Member, error) {
			assert.Equal(t, id, got)
			return &auth.Member{ID: id, Email: "demo@example.com", Name: strPtr("Demo"), IsActive: true}, nil
		},
		endFn: func(context.Context, uuid.UUID) (*auth.Member, error) {
			t.Fatal("end user lookup should not run when demo user matches")
			return nil, nil
		},
	})

	identity, err := svc.Authenticate(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, auth.KindDemoUser, identity.Kind)
	assert.True(t, identity.IsDemoUser())
	assert.Equal(t, "Demo", identity.Name)
	assert.Equal(t, "demo@example.com", identity.Email)
}

func TestAuthenticate_EndUser(t *testing.T) {
	id := uuid.New()
	svc := newService(&auth.Subject{ID: id}, &mockMembers{
		endFn: func(context.Context, uuid.UUID) (*auth.Member, error) {
			return &auth.Member{ID: id, Email: "end@example.com", IsActive: true}, nil
		},
	})

	identity, err := svc.Authenticate(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, auth.KindEndUser, identity.Kind)
	assert.True(t, identity.IsEndUser())
	assert.Empty(t, identity.Name)
}

func TestAuthenticate_NoMembership(t *testing.T) {
	svc := newService(&auth.Subject{ID: uuid.New()}, &mockMembers{})

	_, err := svc.Authenticate(context.Background(), "token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthenticate_VerificationFails(t *testing.T) {
	svc := newService(nil, &mockMembers{})

	_, err := svc.Authenticate(context.Background(), "token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthenticate_LookupErrorFallsThrough(t *testing.T) {
	id := uuid.New()
	svc := newService(&auth.Subject{ID: id}, &mockMembers{
		demoFn: func(context.Context, uuid.UUID) (*auth.Member, error) {
			return nil, errors.New("connection refused")
		},
		endFn: func(context.Context, uuid.UUID) (*auth.Member, error) {
			return &auth.Member{ID: id, IsActive: true}, nil
		},
	})

	identity, err := svc.Authenticate(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, auth.KindEndUser, identity.Kind)
}

// --- Resolve ---

func TestResolve_MissingHeader(t *testing.T) {
	svc := newService(&auth.Subject{ID: uuid.New()}, &mockMembers{})

	_, err := svc.Resolve(context.Background(), "Token abc")
	assert.ErrorIs(t, err, auth.ErrMissingToken)
}

func TestResolve_PassesToken(t *testing.T) {
	id := uuid.New()
	verifier := &mockVerifier{verifyFn: func(_ context.Context, token string) (*auth.Subject, error) {
		assert.Equal(t, "abc", token)
		return &auth.Subject{ID: id}, nil
	}}
	members := &mockMembers{demoFn: func(context.Context, uuid.UUID) (*auth.Member, error) {
		return &auth.Member{ID: id, IsActive: true}, nil
	}}
	svc := auth.NewService(verifier, func() auth.MemberRepository { return members }, zerolog.Nop())

	identity, err := svc.Resolve(context.Background(), "Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, id, identity.ID)
}

// --- Kind ---

func TestKind(t *testing.T) {
	assert.Equal(t, "demo_user", auth.KindDemoUser.String())
	assert.Equal(t, "end_user", auth.KindEndUser.String())
	assert.True(t, auth.KindEndUser.Valid())

	var zero auth.Kind
	assert.False(t, zero.Valid())
	assert.Equal(t, "unknown", zero.String())
}
