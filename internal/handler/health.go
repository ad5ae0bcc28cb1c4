package handler

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/practio/adminx-os/internal/auth"
	"github.com/practio/adminx-os/internal/fetch"
	"github.com/practio/adminx-os/internal/middleware"
	"github.com/practio/adminx-os/internal/server"
)

// CheckIdentity names the identity service reachability check.
const CheckIdentity = "identity"

// HealthHandler reports whether the service is alive and its dependencies
// are reachable.
type HealthHandler struct {
	Handler
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth returns 200 with the status of every configured check, or
// 503 when one of them fails.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      make(map[string]interface{}),
	}

	checks := response["checks"].(map[string]interface{})
	isHealthy := true

	cfg := h.server.Config.Observability.HealthChecks

	if cfg.Enabled && slices.Contains(cfg.Checks, CheckIdentity) && h.server.Relay != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Timeout)
		defer cancel()

		identityStart := time.Now()

		if err := pingIdentity(ctx, h.server.Relay.Client()); err != nil {
			checks[CheckIdentity] = map[string]interface{}{
				"status":        "unhealthy",
				"response_time": time.Since(identityStart).String(),
				"error":         err.Error(),
			}

			isHealthy = false

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(identityStart)).
				Msg("identity health check failed")

			h.recordHealthCheckError(map[string]interface{}{
				"check_type":       CheckIdentity,
				"operation":        "health_check",
				"error_type":       "identity_unreachable",
				"response_time_ms": time.Since(identityStart).Milliseconds(),
				"error_message":    err.Error(),
			})
		} else {
			checks[CheckIdentity] = map[string]interface{}{
				"status":        "healthy",
				"response_time": time.Since(identityStart).String(),
			}

			logger.Debug().
				Dur("response_time", time.Since(identityStart)).
				Msg("identity health check passed")
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")

		h.recordHealthCheckError(map[string]interface{}{
			"check_type":    "response",
			"operation":     "health_check",
			"error_type":    "json_response_error",
			"error_message": err.Error(),
		})

		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) recordHealthCheckError(attrs map[string]interface{}) {
	if h.server.LoggerService != nil && h.server.LoggerService.GetApplication() != nil {
		h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", attrs)
	}
}

// pingIdentity calls the identity endpoint without credentials. Any HTTP
// response, including 401, proves the service is reachable.
func pingIdentity(ctx context.Context, client *fetch.Client) error {
	_, err := client.Do(ctx, auth.MePath, fetch.Options{})
	if err == nil {
		return nil
	}

	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) && fetchErr.Response.Status != 0 {
		return nil
	}
	return err
}
