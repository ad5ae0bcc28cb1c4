package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/errs"
	"github.com/practio/adminx-os/internal/server"
	"github.com/practio/adminx-os/internal/validation"
)

// ErrorCodeDemo is the code of the errors raised by the error demo pages.
const ErrorCodeDemo = "DEMO_ERROR"

// DocsHandler serves the documentation pages of the admin app.
type DocsHandler struct {
	Handler
}

// NewDocsHandler constructs a DocsHandler.
func NewDocsHandler(s *server.Server) *DocsHandler {
	return &DocsHandler{
		Handler: NewHandler(s),
	}
}

// PageRequest is the request of pages without parameters.
type PageRequest struct{}

func (r *PageRequest) Validate() error {
	return nil
}

// ErrorsPageRequest carries the fields of the demo form, refilled from the
// query after a failed post.
type ErrorsPageRequest struct {
	Name  string `query:"name"`
	Email string `query:"email"`
}

func (r *ErrorsPageRequest) Validate() error {
	return nil
}

// ErrorFormRequest is the demo form posted to /errors.
type ErrorFormRequest struct {
	Name  string `form:"name" validate:"required,min=2"`
	Email string `form:"email" validate:"required,email"`
}

func (r *ErrorFormRequest) Validate() error {
	return validation.ValidateStruct(r)
}

// ErrorRequest selects the status of the error raised by /errors/:code.
type ErrorRequest struct {
	Code    int    `param:"code" validate:"min=400,max=599"`
	Message string `query:"message"`
}

func (r *ErrorRequest) Validate() error {
	return validation.ValidateStruct(r)
}

// Home renders the start page.
func (h *DocsHandler) Home(c echo.Context, req *PageRequest) (map[string]any, error) {
	return map[string]any{"title": "adminx"}, nil
}

// Mixins renders the component showcase.
func (h *DocsHandler) Mixins(c echo.Context, req *PageRequest) (map[string]any, error) {
	return map[string]any{"title": "Mixins"}, nil
}

// Errors renders the error demo page.
func (h *DocsHandler) Errors(c echo.Context, req *ErrorsPageRequest) (map[string]any, error) {
	return map[string]any{
		"title": "Errors",
		"form": map[string]string{
			"name":  req.Name,
			"email": req.Email,
		},
		"statuses": []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
		},
	}, nil
}

// SubmitError always rejects the demo form so the post redirect and alert
// cookie can be seen. Invalid input fails validation first.
func (h *DocsHandler) SubmitError(c echo.Context, req *ErrorFormRequest) error {
	return errs.New(http.StatusUnprocessableEntity, ErrorCodeDemo, "The form was received but rejected on purpose")
}

// RaiseError fails with the requested status.
func (h *DocsHandler) RaiseError(c echo.Context, req *ErrorRequest) (struct{}, error) {
	return struct{}{}, errs.New(req.Code, ErrorCodeDemo, req.Message)
}
