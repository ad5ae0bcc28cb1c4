package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/href"
	"github.com/practio/adminx-os/internal/pipeline"
	"github.com/practio/adminx-os/internal/reqctx"
)

// CallbackURLParam names the form field and query parameter holding the
// callback URL.
const CallbackURLParam = "callbackUrl"

// CSRFTokenStep copies the token issued by the CSRF middleware into the
// request context.
func CSRFTokenStep(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
	token, _ := c.Get(CSRFContextKey).(string)
	return rc.WithCSRFToken(token), nil
}

// HrefStep derives the base, canonical and full hrefs of the request.
// mountPath is the path the app is mounted under.
func HrefStep(mountPath string) pipeline.Step {
	return func(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
		r := c.Request()
		return rc.
			WithBaseHref(href.BaseHref(r, mountPath)).
			WithCanonicalHref(href.CanonicalHref(r)).
			WithFullHref(href.FullHref(r)), nil
	}
}

// CallbackURLStep picks the callback URL from the form body, then the
// query. Candidates outside the base href's zone are ignored. HrefStep
// must run first.
func CallbackURLStep(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
	base := rc.BaseHref()
	if base == nil {
		base = href.BaseHref(c.Request(), "")
	}

	callback := href.CallbackURL(base,
		c.Request().PostFormValue(CallbackURLParam),
		c.QueryParam(CallbackURLParam),
	)
	return rc.WithCallbackURL(callback), nil
}
