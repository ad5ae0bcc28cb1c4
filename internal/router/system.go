package router

import (
	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/server"
)

// registerSystemRoutes registers the routes the admin app owns itself.
//
// Routes include:
//  1. Logout, when authentication is configured
func registerSystemRoutes(g *echo.Group, s *server.Server) {
	if s.Relay != nil {
		g.GET("/logout", s.Relay.Logout)
	}
}
