package errs_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/practio/adminx-os/internal/errs"
	"github.com/stretchr/testify/assert"
)

type statusErr struct{ status int }

func (e statusErr) Error() string   { return "status" }
func (e statusErr) StatusCode() int { return e.status }

type codedErr struct{}

func (codedErr) Error() string     { return "coded" }
func (codedErr) ErrorCode() string { return errs.CodeFetch }

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"http error", errs.NewNotFoundError("missing"), http.StatusNotFound},
		{"wrapped http error", fmt.Errorf("wrap: %w", errs.NewAuthorizationError("no")), http.StatusForbidden},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed},
		{"status coder", statusErr{status: 418}, 418},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"coded without status", codedErr{}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errs.StatusOf(tt.err))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, errs.CodeAuthentication, errs.CodeOf(errs.NewAuthenticationError("x", nil)))
	assert.Equal(t, errs.CodeAuthorization, errs.CodeOf(fmt.Errorf("w: %w", errs.NewAuthorizationError("x"))))
	assert.Equal(t, errs.CodeFetch, errs.CodeOf(codedErr{}))
	assert.Equal(t, "NOT_FOUND", errs.CodeOf(echo.ErrNotFound))
	assert.Equal(t, "", errs.CodeOf(fmt.Errorf("plain")))
}

func TestHTTPErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", errs.NewAuthorizationError("nope"))

	assert.ErrorIs(t, err, &errs.HTTPError{})
	assert.ErrorIs(t, err, &errs.HTTPError{Code: errs.CodeAuthorization})
	assert.NotErrorIs(t, err, &errs.HTTPError{Code: errs.CodeAuthentication})
}

func TestAuthenticationErrorKeepsCause(t *testing.T) {
	cause := fmt.Errorf("upstream said no")
	err := errs.NewAuthenticationError("upstream said no", cause)

	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, err.ID)
	assert.Contains(t, errs.StackOf(err), "upstream said no")
}

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", errs.MakeUpperCaseWithUnderscores("Bad Request"))
}
