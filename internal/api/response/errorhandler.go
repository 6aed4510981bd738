package response

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/daap14/catalog-api/internal/api/metrics"
	"github.com/daap14/catalog-api/internal/apperror"
)

// ErrorHandlerOptions controls what ErrorHandler logs.
type ErrorHandlerOptions struct {
	LogErrors         bool
	IncludeStackTrace bool
}

// ErrorHandler normalizes failures and writes the error envelope.
type ErrorHandler struct {
	opts ErrorHandlerOptions
	log  zerolog.Logger
}

// NewErrorHandler creates an ErrorHandler.
func NewErrorHandler(opts ErrorHandlerOptions, log zerolog.Logger) *ErrorHandler {
	return &ErrorHandler{opts: opts, log: log}
}

// Handle writes the response for v, which may be an error or a recovered
// panic value of any type.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, v any) {
	e := apperror.Normalize(v)
	if e == nil {
		e = apperror.Internal(nil)
	}

	if h.opts.LogErrors {
		h.logError(r, w, e)
	}
	metrics.ErrorsTotal.WithLabelValues(e.Code()).Inc()

	Err(w, e)
}

func (h *ErrorHandler) logError(r *http.Request, w http.ResponseWriter, e *apperror.Error) {
	level := zerolog.WarnLevel
	if e.Status() >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}

	ev := h.log.WithLevel(level).
		Str("timestamp", time.Now().UTC().Format(TimestampFormat)).
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Str("userAgent", r.UserAgent()).
		Str("code", e.Code()).
		Int("status", e.Status()).
		Str("error", e.Error())
	if id := w.Header().Get("X-Request-ID"); id != "" {
		ev = ev.Str("requestId", id)
	}
	if h.opts.IncludeStackTrace {
		ev = ev.Str("stack", fmt.Sprintf("%+v", e))
	}
	ev.Msg("API Error")
}
