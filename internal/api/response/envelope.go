package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/daap14/catalog-api/internal/apperror"
	"github.com/daap14/catalog-api/internal/logger"
)

// TimestampFormat is the millisecond-precision UTC format used in error bodies.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorBody is the JSON body of every error response except 405.
type ErrorBody struct {
	Error     string            `json:"error"`
	Code      string            `json:"code,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// methodNotAllowedBody is the exact 405 body; it carries no code or timestamp.
type methodNotAllowedBody struct {
	Error string `json:"error"`
}

// NewErrorBody builds the envelope for e, stamped with the current time.
func NewErrorBody(e *apperror.Error) ErrorBody {
	return ErrorBody{
		Error:     e.Message,
		Code:      e.Code(),
		Details:   e.Details,
		Timestamp: time.Now().UTC().Format(TimestampFormat),
	}
}

// JSON writes v as the response body with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l := logger.Get()
		l.Error().Err(err).Msg("failed to encode response")
	}
}

// Err writes the error envelope for e.
func Err(w http.ResponseWriter, e *apperror.Error) {
	JSON(w, e.Status(), NewErrorBody(e))
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// MethodNotAllowed writes the bare 405 body.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusMethodNotAllowed, methodNotAllowedBody{Error: apperror.MethodNotAllowed().Message})
}
