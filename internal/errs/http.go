package errs

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// New creates an HTTPError with an explicit code and status.
// Downstream handlers use it to fail with a status of their choosing.
func New(status int, code, message string) *HTTPError {
	if code == "" {
		code = MakeUpperCaseWithUnderscores(http.StatusText(status))
	}
	return &HTTPError{
		ID:      uuid.NewString(),
		Code:    code,
		Message: message,
		Status:  status,
		cause:   errors.New(message),
	}
}

// NewAuthenticationError reports that the upstream identity check failed.
// cause is the upstream failure, kept for diagnostics.
func NewAuthenticationError(message string, cause error) *HTTPError {
	e := New(http.StatusUnauthorized, CodeAuthentication, message)
	if cause != nil {
		e.cause = errors.WithStack(cause)
	}
	return e
}

// NewAuthorizationError reports an authenticated request that lacks the
// required roles, or a guarded route reached without a user.
func NewAuthorizationError(message string) *HTTPError {
	return New(http.StatusForbidden, CodeAuthorization, message)
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return New(http.StatusNotFound, "", message)
}

// NewForbiddenError creates a 403 HTTPError. code defaults to "FORBIDDEN".
func NewForbiddenError(message string, code string) *HTTPError {
	return New(http.StatusForbidden, code, message)
}

// NewBadRequestError creates a 400 Bad Request HTTPError with optional
// field-level errors.
func NewBadRequestError(message string, fieldErrors []FieldError) *HTTPError {
	e := New(http.StatusBadRequest, "", message)
	e.Errors = fieldErrors
	return e
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text, not the real internal error message.
func NewInternalServerError() *HTTPError {
	return New(http.StatusInternalServerError, "", http.StatusText(http.StatusInternalServerError))
}

// ValidationError converts a generic validation error into a 400 Bad Request HTTPError.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), nil)
}
