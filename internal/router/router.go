// Package router assembles the admin app on an Echo instance.
//
// It installs the global middleware in order, mounts the built-in and
// downstream routes under the mount path and wires the error chain.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/middleware"
	"github.com/practio/adminx-os/internal/pipeline"
	"github.com/practio/adminx-os/internal/server"
)

// Registrar registers the downstream routes of the admin app on the group
// at the mount path.
type Registrar interface {
	Register(g *echo.Group)
}

// RegistrarFunc adapts a function to Registrar.
type RegistrarFunc func(g *echo.Group)

func (f RegistrarFunc) Register(g *echo.Group) {
	f(g)
}

// NewRouter builds the admin app for s around the routes of reg.
func NewRouter(s *server.Server, reg Registrar) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)
	opts := s.Options()

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.Renderer = s.Renderer
	router.HTTPErrorHandler = newErrorHandler(s)

	router.Use(
		middlewares.Global.Recover(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.RateLimiter(middlewares.RateLimit),
		pipeline.Steps(middleware.NonceStep),
		middlewares.Global.Secure(),
		middleware.SecurityHeaders(),
		middlewares.Global.Gzip(),
		middlewares.Global.BodyLimit(),
		middlewares.Global.CSRF(),
		pipeline.Steps(
			middleware.CSRFTokenStep,
			middleware.HrefStep(opts.MountPath),
			middleware.CallbackURLStep,
		),
		middleware.Static(opts.MountPath, middleware.StaticMounts(s)...),
		pipeline.Steps(middleware.AlertStep),
	)

	if s.Relay != nil {
		router.Use(s.Relay.Authenticate())
	}

	g := router.Group(opts.MountPath)

	registerSystemRoutes(g, s)

	if reg != nil {
		reg.Register(g)
	}

	return router
}

// newErrorHandler builds the error chain. Authentication and authorization
// failures only redirect to the login page when the relay is installed;
// otherwise they render like any other error.
func newErrorHandler(s *server.Server) echo.HTTPErrorHandler {
	var stages []pipeline.ErrorStage
	if s.Relay != nil {
		stages = append(stages, s.Relay.RedirectStage())
	}
	stages = append(stages,
		middleware.AlertCookieStage(),
		middleware.PostRedirectStage(),
		middleware.RenderStage(s.Options().ReturnErrorDetails),
	)

	chain := pipeline.NewErrorChain(middleware.GetLogger, stages...)

	return func(err error, c echo.Context) {
		chain.Handle(middleware.NormalizeError(err), c)
	}
}
