package errs

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Error codes understood by the error chain.
const (
	CodeAuthentication = "ERR_AUTHENTICATION"
	CodeAuthorization  = "ERR_AUTHORIZATION"
	CodeFetch          = "FETCH_ERROR"
	CodeBadCSRFToken   = "EBADCSRFTOKEN"
)

// FieldError represents a field-level validation error (typical for forms).
// Example:
//
//	{ "field": "email", "error": "invalid email format" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the main structured error type.
//
// Fields:
//   - ID: unique identifier shown on the error page so operators can find the log line.
//   - Code: machine-friendly error code (e.g. "ERR_AUTHENTICATION").
//   - Message: human-friendly message.
//   - Status: HTTP status used when the error is rendered.
//   - Errors: list of per-field errors (validation).
type HTTPError struct {
	ID      string       `json:"id"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors,omitempty"`

	// cause carries the stack trace of the construction site, or the
	// wrapped upstream failure.
	cause error
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *HTTPError carrying the same code.
// A target with an empty code matches any *HTTPError.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		ID:      e.ID,
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
		Errors:  e.Errors,
		cause:   e.cause,
	}
}

// Coder is implemented by errors of other packages that carry a code
// (for example the upstream fetch error).
type Coder interface {
	ErrorCode() string
}

// StatusCoder is implemented by errors that know their HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// CodeOf returns the structured error code of err, or "" when err has none.
func CodeOf(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	var coder Coder
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code))
	}

	return ""
}

// StatusOf derives the HTTP status to respond with. Errors without a known
// status map to 500.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Status != 0 {
		return httpErr.Status
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code != 0 {
		return echoErr.Code
	}

	var sc StatusCoder
	if errors.As(err, &sc) && sc.StatusCode() != 0 {
		return sc.StatusCode()
	}

	return http.StatusInternalServerError
}

// IDOf returns the identifier of a structured error, or "".
func IDOf(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.ID
	}
	return ""
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// StackOf renders the deepest stack trace recorded in the error chain.
func StackOf(err error) string {
	var deepest stackTracer
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := e.(stackTracer); ok {
			deepest = st
		}
	}
	if deepest == nil {
		return ""
	}
	return fmt.Sprintf("%v%+v", deepest, deepest.StackTrace())
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
