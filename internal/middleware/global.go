package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/practio/adminx-os/internal/errs"
	"github.com/practio/adminx-os/internal/server"
)

// CSRF protection settings. The token is read from the _csrf form field or
// the X-CSRF-Token header and checked against the _csrf cookie.
const (
	CSRFField      = "_csrf"
	CSRFHeader     = "X-CSRF-Token"
	CSRFCookieName = "_csrf"
	CSRFContextKey = "csrf"
)

// GlobalMiddlewares groups the middleware every request of the admin app
// goes through.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs the middleware bundle.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// RequestLogger emits one "API" log line per request, with a level derived
// from the status, and records the request duration histogram.
//
// Handler errors are turned into responses by the error chain after this
// middleware returns, so the status is taken from the error when there is
// one.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status
			if v.Error != nil {
				statusCode = errs.StatusOf(v.Error)
			}

			global.server.Metrics.RequestServed(v.Method, statusCode, v.Latency)

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if userID := GetUserID(c); userID != "" {
				e = e.Str("user_id", userID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns panics into errors handled by the error chain.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisablePrintStack: true,
	})
}

// Secure sets the static security headers. The Content-Security-Policy
// carries a per-request nonce and is set by ContentSecurityPolicy.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "0",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         15552000,
		ReferrerPolicy:     "same-origin",
	})
}

// Gzip compresses responses for clients that accept it.
func (global *GlobalMiddlewares) Gzip() echo.MiddlewareFunc {
	return middleware.Gzip()
}

// BodyLimit rejects request bodies larger than the configured limit.
func (global *GlobalMiddlewares) BodyLimit() echo.MiddlewareFunc {
	return middleware.BodyLimit(global.server.Options().BodyLimit)
}

// CSRF validates the token of unsafe requests and issues a token for every
// request. Failures become EBADCSRFTOKEN errors.
func (global *GlobalMiddlewares) CSRF() echo.MiddlewareFunc {
	cookiePath := global.server.Options().MountPath
	if cookiePath == "" {
		cookiePath = "/"
	}

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + CSRFField + ",header:" + CSRFHeader,
		ContextKey:     CSRFContextKey,
		CookieName:     CSRFCookieName,
		CookiePath:     cookiePath,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
		ErrorHandler: func(err error, c echo.Context) error {
			GetLogger(c).Debug().Err(err).Msg("csrf check failed")
			return errs.NewForbiddenError("invalid csrf token", errs.CodeBadCSRFToken)
		},
	})
}

// RateLimiter limits requests per client IP when a rate is configured.
func (global *GlobalMiddlewares) RateLimiter(rl *RateLimitMiddleware) echo.MiddlewareFunc {
	limit := global.server.Options().RateLimit
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(limit)),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.New(http.StatusForbidden, "", "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			rl.RecordRateLimitHit(c)
			return errs.New(http.StatusTooManyRequests, "", "Too Many Requests")
		},
	})
}
