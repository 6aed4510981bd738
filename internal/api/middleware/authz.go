package middleware

import (
	"net/http"

	"github.com/daap14/catalog-api/internal/api/response"
	"github.com/daap14/catalog-api/internal/apperror"
	"github.com/daap14/catalog-api/internal/auth"
)

// RequireDemoUser rejects identities that are not demo users with 403.
func RequireDemoUser(errs *response.ErrorHandler) func(http.Handler) http.Handler {
	return requireKind((*auth.Identity).IsDemoUser, "Demo user access required", errs)
}

// RequireEndUser rejects identities that are not end users with 403.
func RequireEndUser(errs *response.ErrorHandler) func(http.Handler) http.Handler {
	return requireKind((*auth.Identity).IsEndUser, "End user access required", errs)
}

func requireKind(allowed func(*auth.Identity) bool, message string, errs *response.ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				errs.Handle(w, r, apperror.Unauthorized(msgMissingToken))
				return
			}
			if !allowed(identity) {
				errs.Handle(w, r, apperror.Forbidden(message))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
