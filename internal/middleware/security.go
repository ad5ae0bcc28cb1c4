package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/practio/adminx-os/internal/reqctx"
)

// cspTemplate is the Content-Security-Policy; {nonce} is replaced per
// request. form-action is left out so forms may post to other services.
var cspTemplate = strings.Join([]string{
	"default-src 'self'",
	"base-uri 'self'",
	"font-src 'self' https: data:",
	"frame-ancestors 'self'",
	"img-src 'self' data:",
	"object-src 'none'",
	"script-src 'self' 'nonce-{nonce}'",
	"script-src-attr 'none'",
	"style-src 'self' https: 'unsafe-inline'",
	"upgrade-insecure-requests",
}, ";")

// isolationHeaders are set on every response next to the CSP.
var isolationHeaders = map[string]string{
	"Cross-Origin-Opener-Policy":        "same-origin",
	"Cross-Origin-Resource-Policy":      "same-origin",
	"Origin-Agent-Cluster":              "?1",
	"X-DNS-Prefetch-Control":            "off",
	"X-Download-Options":                "noopen",
	"X-Permitted-Cross-Domain-Policies": "none",
}

// NonceStep stores a fresh 16 byte hex nonce in the request context.
func NonceStep(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
	nonce, err := newNonce()
	if err != nil {
		return rc, err
	}
	return rc.WithNonce(nonce), nil
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate csp nonce")
	}
	return hex.EncodeToString(b), nil
}

// ContentSecurityPolicy returns the CSP for nonce.
func ContentSecurityPolicy(nonce string) string {
	return strings.Replace(cspTemplate, "{nonce}", nonce, 1)
}

// SecurityHeaders sets the Content-Security-Policy with the request nonce
// and the cross-origin isolation headers. NonceStep must run first.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Content-Security-Policy", ContentSecurityPolicy(reqctx.From(c).Nonce()))
			for name, value := range isolationHeaders {
				h.Set(name, value)
			}
			return next(c)
		}
	}
}
