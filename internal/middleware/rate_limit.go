package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/server"
)

// RateLimitMiddleware records rate limit telemetry.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// RecordRateLimitHit logs the denied request and records a RateLimitHit
// New Relic event.
func (r *RateLimitMiddleware) RecordRateLimitHit(c echo.Context) {
	path := c.Request().URL.Path
	GetLogger(c).Warn().Str("endpoint", path).Msg("rate limit hit")

	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint":   path,
			"mount_path": r.server.Options().MountPath,
		})
	}
}
