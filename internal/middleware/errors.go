package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/practio/adminx-os/internal/errs"
	"github.com/practio/adminx-os/internal/pipeline"
	"github.com/practio/adminx-os/internal/reqctx"
)

// ErrorView is the view rendered for errors no earlier stage handled.
const ErrorView = "error"

// NormalizeError maps echo's own errors onto the structured errors of the
// admin app. Unmatched routes become NOT_FOUND.
func NormalizeError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var echoErr *echo.HTTPError
	if !errors.As(err, &echoErr) {
		return err
	}

	if echoErr.Code == http.StatusNotFound {
		return errs.NewNotFoundError("Not Found")
	}

	message := http.StatusText(echoErr.Code)
	switch msg := echoErr.Message.(type) {
	case nil:
	case string:
		if msg != "" {
			message = msg
		}
	default:
		message = fmt.Sprint(msg)
	}
	return errs.New(echoErr.Code, "", message)
}

// AlertCookieStage stores the message and code of every error in the
// alert cookie, shown on the next page view. It never ends the chain.
func AlertCookieStage() pipeline.ErrorStage {
	return func(err error, c echo.Context) pipeline.Outcome {
		value, encErr := EncodeAlert(reqctx.Alert{
			Message: err.Error(),
			Code:    errs.CodeOf(err),
		})
		if encErr != nil {
			GetLogger(c).Error().Err(encErr).Msg("failed to encode alert cookie")
			return pipeline.Continue()
		}
		setAlertCookie(c, value)
		return pipeline.Continue()
	}
}

// PostRedirectStage sends failed form posts back to the referring page
// with the submitted fields in its query, so the form can be refilled.
// Repeated fields are joined with "," and the CSRF field is dropped.
func PostRedirectStage() pipeline.ErrorStage {
	return func(err error, c echo.Context) pipeline.Outcome {
		req := c.Request()
		if req.Method != http.MethodPost {
			return pipeline.Continue()
		}

		referrer := req.Header.Get("Referer")
		if referrer == "" {
			referrer = req.Header.Get("Referrer")
		}
		if referrer == "" {
			return pipeline.Continue()
		}

		target, perr := url.Parse(referrer)
		if perr != nil || !target.IsAbs() {
			return pipeline.Continue()
		}

		query := target.Query()
		for name, values := range submittedFields(req) {
			query.Set(name, strings.Join(values, ","))
		}
		query.Del(CSRFField)
		target.RawQuery = query.Encode()

		return pipeline.Redirect(target.String())
	}
}

// submittedFields returns the fields of the request body. Query parameters
// of the POST URL are not part of it.
func submittedFields(r *http.Request) url.Values {
	if strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil || r.MultipartForm == nil {
			return nil
		}
		return r.MultipartForm.Value
	}

	if err := r.ParseForm(); err != nil {
		return nil
	}
	return r.PostForm
}

// multipartMemory matches the in-memory limit echo parses multipart forms
// with.
const multipartMemory = 32 << 20

// RenderStage renders the error view with the error's status. Messages
// and stacks are only exposed when details is set.
func RenderStage(details bool) pipeline.ErrorStage {
	return func(err error, c echo.Context) pipeline.Outcome {
		status := errs.StatusOf(err)
		return pipeline.Render(status, ErrorView, ErrorData(err, details))
	}
}

// ErrorData is the data the error view is rendered with.
func ErrorData(err error, details bool) map[string]any {
	status := errs.StatusOf(err)

	view := map[string]any{
		"id":      errs.IDOf(err),
		"code":    errs.CodeOf(err),
		"message": "",
		"stack":   "",
	}
	if details {
		view["message"] = err.Error()
		view["stack"] = errs.StackOf(err)
	}

	return map[string]any{
		"statusCode":         status,
		"statusMessage":      http.StatusText(status),
		"error":              view,
		"returnErrorDetails": details,
	}
}
