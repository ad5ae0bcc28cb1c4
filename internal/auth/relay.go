// Package auth relays the session cookie to the identity service and
// guards routes by role.
package auth

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/practio/adminx-os/internal/config"
	"github.com/practio/adminx-os/internal/errs"
	"github.com/practio/adminx-os/internal/fetch"
	"github.com/practio/adminx-os/internal/href"
	"github.com/practio/adminx-os/internal/metrics"
	"github.com/practio/adminx-os/internal/pipeline"
	"github.com/practio/adminx-os/internal/reqctx"
)

// MePath is the identity endpoint, relative to the identity service.
const MePath = "/api/auth/me"

// RedirectParam carries the current URL to the login page.
const RedirectParam = "redirect_uri"

// Relay authenticates requests that carry the session cookie.
type Relay struct {
	cookieName string
	loginURL   *url.URL
	client     *fetch.Client
	metrics    *metrics.Metrics
}

// NewRelay builds a relay for cfg. hc may be nil to use the default HTTP
// client; m may be nil.
func NewRelay(cfg config.AuthConfig, hc *http.Client, m *metrics.Metrics) (*Relay, error) {
	loginURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse auth base url %q", cfg.BaseURL)
	}

	opts := []fetch.Option{fetch.WithObserver(m.UpstreamResponse)}
	if hc != nil {
		opts = append(opts, fetch.WithHTTPClient(hc))
	}

	client, err := fetch.New(cfg.BaseURL, fetch.Options{
		Headers: map[string]string{
			echo.HeaderAccept:      echo.MIMEApplicationJSON,
			echo.HeaderContentType: echo.MIMEApplicationJSON,
		},
	}, opts...)
	if err != nil {
		return nil, err
	}

	return &Relay{
		cookieName: cfg.CookieName,
		loginURL:   loginURL,
		client:     client,
		metrics:    m,
	}, nil
}

// CookieName is the session cookie the relay looks for.
func (r *Relay) CookieName() string {
	return r.cookieName
}

// Client is the identity service client.
func (r *Relay) Client() *fetch.Client {
	return r.client
}

// Authenticate resolves the user of requests carrying the session cookie.
// Requests without it proceed unauthenticated.
func (r *Relay) Authenticate() echo.MiddlewareFunc {
	return pipeline.Steps(r.Step)
}

// Step is the pipeline form of Authenticate.
func (r *Relay) Step(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
	cookie, err := c.Cookie(r.cookieName)
	if err != nil || cookie.Value == "" {
		r.metrics.AuthResult(metrics.AuthAnonymous)
		return rc, nil
	}

	ctx := c.Request().Context()
	log := zerolog.Ctx(ctx)

	payload, err := r.client.Do(ctx, MePath, fetch.Options{
		Headers: map[string]string{
			echo.HeaderCookie: c.Request().Header.Get(echo.HeaderCookie),
		},
	})
	if err != nil {
		r.metrics.AuthResult(metrics.AuthFailed)
		log.Debug().Err(err).Msg("identity request failed")
		return rc, errs.NewAuthenticationError(err.Error(), err)
	}

	user, err := reqctx.DecodeUser(payload)
	if err != nil {
		r.metrics.AuthResult(metrics.AuthFailed)
		log.Debug().Err(err).Msg("identity payload rejected")
		return rc, errs.NewAuthenticationError(err.Error(), err)
	}

	r.metrics.AuthResult(metrics.AuthAuthenticated)
	log.Debug().Str("user_id", user.ID).Strs("roles", user.Roles).Msg("authenticated")

	return rc.WithUser(user), nil
}

// Logout clears the session cookie and redirects to the site root.
func (r *Relay) Logout(c echo.Context) error {
	r.clearCookie(c)
	return c.Redirect(http.StatusFound, "/")
}

// RedirectStage turns authentication and authorization failures into a
// redirect to the login page carrying the current URL. Other errors pass.
func (r *Relay) RedirectStage() pipeline.ErrorStage {
	return func(err error, c echo.Context) pipeline.Outcome {
		switch errs.CodeOf(err) {
		case errs.CodeAuthentication, errs.CodeAuthorization:
		default:
			return pipeline.Continue()
		}

		r.metrics.AuthResult(metrics.AuthRedirected)
		r.clearCookie(c)

		full := reqctx.From(c).FullHref()
		if full == nil {
			full = href.FullHref(c.Request())
		}

		target := *r.loginURL
		query := target.Query()
		query.Add(RedirectParam, full.String())
		target.RawQuery = query.Encode()

		return pipeline.Redirect(target.String())
	}
}

func (r *Relay) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:   r.cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
