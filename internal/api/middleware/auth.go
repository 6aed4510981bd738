package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/daap14/catalog-api/internal/api/metrics"
	"github.com/daap14/catalog-api/internal/api/response"
	"github.com/daap14/catalog-api/internal/apperror"
	"github.com/daap14/catalog-api/internal/auth"
)

const identityKey contextKey = "identity"

const (
	msgMissingToken = "Authorization header missing or invalid"
	msgInvalidToken = "Invalid or expired token"
)

// IdentityResolver resolves an Authorization header value to an Identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, header string) (*auth.Identity, error)
}

// Auth resolves the bearer token in the Authorization header and stores the
// Identity in the request context. Missing or unusable tokens return 401.
func Auth(resolver IdentityResolver, errs *response.ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrMissingToken):
					metrics.AuthResolutionsTotal.WithLabelValues("missing_token").Inc()
					errs.Handle(w, r, apperror.Unauthorized(msgMissingToken))
				case errors.Is(err, auth.ErrInvalidToken):
					metrics.AuthResolutionsTotal.WithLabelValues("invalid_token").Inc()
					errs.Handle(w, r, apperror.Unauthorized(msgInvalidToken))
				default:
					metrics.AuthResolutionsTotal.WithLabelValues("error").Inc()
					errs.Handle(w, r, err)
				}
				return
			}
			if identity == nil || !identity.Kind.Valid() {
				metrics.AuthResolutionsTotal.WithLabelValues("error").Inc()
				errs.Handle(w, r, apperror.Internal(fmt.Errorf("resolver returned an identity without a valid kind: %v", identity)))
				return
			}

			metrics.AuthResolutionsTotal.WithLabelValues(identity.Kind.String()).Inc()
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey).(*auth.Identity)
	return id
}
