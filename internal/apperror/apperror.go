// Package apperror defines the closed set of failures the API can report and
// the normalizer that maps any failure onto it.
package apperror

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Kind tags an Error with one of the failure classes the API exposes.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
	KindMethodNotAllowed
	KindUnknown
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case KindUnknown:
		return "UNKNOWN_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

const (
	msgInternal   = "Internal server error"
	msgUnknown    = "An unexpected error occurred"
	msgValidation = "Validation failed"
)

// Error is a tagged API failure. Message and Details are safe to return to
// clients; the wrapped cause is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil && e.cause.Error() != e.Message {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Status is shorthand for e.Kind.Status().
func (e *Error) Status() int { return e.Kind.Status() }

// Code is shorthand for e.Kind.Code().
func (e *Error) Code() string { return e.Kind.Code() }

// Format prints the cause chain with stack frames for %+v.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') && e.cause != nil {
			fmt.Fprintf(s, "%s\n%+v", e.Message, e.cause)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

func newError(kind Kind, message string, cause error) *Error {
	if cause == nil {
		cause = errors.New(message)
	}
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Unauthorized reports a missing or unusable credential.
func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, message, nil)
}

// Forbidden reports an authenticated caller that may not use the endpoint.
func Forbidden(message string) *Error {
	return newError(KindForbidden, message, nil)
}

// NotFound reports an absent resource. cause may be nil.
func NotFound(message string, cause error) *Error {
	return newError(KindNotFound, message, withStack(cause))
}

// Conflict reports a uniqueness violation. cause may be nil.
func Conflict(message string, cause error) *Error {
	return newError(KindConflict, message, withStack(cause))
}

// Validation reports every failing input field at once.
func Validation(details map[string]string) *Error {
	e := newError(KindValidation, msgValidation, nil)
	e.Details = details
	return e
}

// MethodNotAllowed reports an unmapped HTTP method.
func MethodNotAllowed() *Error {
	return newError(KindMethodNotAllowed, "Method not allowed", nil)
}

// Internal hides cause behind a generic message.
func Internal(cause error) *Error {
	return newError(KindInternal, msgInternal, withStack(cause))
}

func withStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(interface{ StackTrace() errors.StackTrace }); ok {
		return err
	}
	return errors.WithStack(err)
}

// Normalize maps any failure onto a tagged Error. Tagged errors anywhere in
// the chain win; other errors are classified by message; non-error values
// become KindUnknown.
func Normalize(v any) *Error {
	if v == nil {
		return nil
	}

	err, ok := v.(error)
	if !ok {
		return newError(KindUnknown, msgUnknown, errors.Errorf("%v", v))
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return newError(KindNotFound, msg, withStack(err))
	case strings.Contains(msg, "already exists"):
		return newError(KindConflict, msg, withStack(err))
	case strings.Contains(msg, "permission"), strings.Contains(msg, "unauthorized"):
		return newError(KindForbidden, msg, withStack(err))
	default:
		return Internal(err)
	}
}
