package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/practio/adminx-os/internal/server"
)

// Middlewares groups all middleware components of the admin app so the
// router builds them once.
type Middlewares struct {
	// Global holds the stock echo middleware configured for the app:
	// recovery, request logging, secure headers, gzip, body limit, CSRF.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches a request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing provides the New Relic middleware. It is a no-op without an
	// application.
	Tracing *TracingMiddleware

	// RateLimit records rate limit hits.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
