// Package adminx mounts an admin panel on any Go HTTP server.
//
// New wraps the routes of an admin application with authentication
// relay, role guards, CSRF protection, security headers, templating and
// href helpers, and returns an http.Handler:
//
//	opts := adminx.DefaultOptions()
//	opts.Auth = &adminx.AuthConfig{CookieName: "session", BaseURL: "https://id.example.com"}
//	opts.Views = []string{"views"}
//
//	app, err := adminx.New(adminx.HandlerFunc(func(g *echo.Group) {
//		g.GET("/", func(c echo.Context) error {
//			return c.Render(http.StatusOK, "home", nil)
//		}, adminx.Authorize(adminx.Any("admin")))
//	}), opts)
package adminx

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/auth"
	"github.com/practio/adminx-os/internal/config"
	"github.com/practio/adminx-os/internal/errs"
	"github.com/practio/adminx-os/internal/href"
	"github.com/practio/adminx-os/internal/reqctx"
	"github.com/practio/adminx-os/internal/router"
	"github.com/practio/adminx-os/internal/server"
	"github.com/practio/adminx-os/internal/view"
)

type (
	// Options configures an admin app. Start from DefaultOptions.
	Options = config.Options

	// AuthConfig enables the authentication relay.
	AuthConfig = config.AuthConfig

	// AssetsConfig lists optional third-party asset locations.
	AssetsConfig = config.AssetsConfig

	// Handler registers the routes of the admin application.
	Handler = router.Registrar

	// HandlerFunc adapts a function to Handler.
	HandlerFunc = router.RegistrarFunc

	// Restriction is a group of alternative roles.
	Restriction = auth.Restriction

	// User is the authenticated identity.
	User = reqctx.User

	// Actor is the audit projection of User.
	Actor = reqctx.Actor

	// Error is the structured error rendered by the error chain.
	Error = errs.HTTPError

	// StylesheetCompiler compiles companion stylesheets of views.
	StylesheetCompiler = view.StylesheetCompiler
)

// Error codes of the error chain.
const (
	CodeAuthentication = errs.CodeAuthentication
	CodeAuthorization  = errs.CodeAuthorization
	CodeFetch          = errs.CodeFetch
	CodeBadCSRFToken   = errs.CodeBadCSRFToken
)

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return config.DefaultOptions()
}

// New assembles an admin app around h.
func New(h Handler, opts Options) (*echo.Echo, error) {
	s, err := server.New(config.ForOptions(opts), nil, nil)
	if err != nil {
		return nil, err
	}
	return router.NewRouter(s, h), nil
}

// WrapHTTP serves every path of the admin app not otherwise routed with h.
func WrapHTTP(h http.Handler) Handler {
	return HandlerFunc(func(g *echo.Group) {
		g.Any("/*", echo.WrapHandler(h))
	})
}

// Authorize guards a route by role. See Any.
func Authorize(restrictions ...Restriction) echo.MiddlewareFunc {
	return auth.Authorize(restrictions...)
}

// Any is satisfied by a user holding at least one of roles.
func Any(roles ...string) Restriction {
	return auth.Any(roles...)
}

// NewError returns an error rendered with status. code defaults to the
// upper-cased status text.
func NewError(status int, code, message string) *Error {
	return errs.New(status, code, message)
}

// CurrentUser returns the authenticated user of the request, or nil.
func CurrentUser(c echo.Context) *User {
	return reqctx.From(c).User()
}

// CurrentActor returns the actor of the request, or nil.
func CurrentActor(c echo.Context) *Actor {
	return reqctx.From(c).Actor()
}

// CallbackURL returns the validated callbackUrl of the request, or nil.
func CallbackURL(c echo.Context) *url.URL {
	return reqctx.From(c).CallbackURL()
}

// Href resolves pathname and searchParams against the current request the
// way the href template helper does. "~/" paths are relative to the mount
// path.
func Href(c echo.Context, pathname string, searchParams map[string]any) string {
	rc := reqctx.From(c)
	base, full := rc.BaseHref(), rc.FullHref()
	if base == nil {
		base = href.BaseHref(c.Request(), "")
	}
	if full == nil {
		full = href.FullHref(c.Request())
	}
	return href.Href(base, full, pathname, searchParams)
}
