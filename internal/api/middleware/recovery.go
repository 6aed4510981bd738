package middleware

import (
	"net/http"

	"github.com/daap14/catalog-api/internal/api/response"
)

// Recovery turns a panic in next into an error response. Panic values that
// are not errors surface as UNKNOWN_ERROR.
func Recovery(errs *response.ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					errs.Handle(w, r, rec)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
