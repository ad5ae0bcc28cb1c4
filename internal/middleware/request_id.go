package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/reqctx"
)

// RequestIDHeader is the HTTP header carrying the request correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID returns an Echo middleware that ensures each request has a
// request ID.
//
// An incoming X-Request-ID header is reused, otherwise a UUID is generated.
// The ID is stored in the request context and echoed on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			reqctx.Store(c, reqctx.From(c).WithRequestID(requestID))
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

// GetRequestID retrieves the request ID. Returns "" if not set.
func GetRequestID(c echo.Context) string {
	return reqctx.From(c).RequestID()
}
