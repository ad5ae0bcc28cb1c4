// Package server defines the Server container that composes the admin
// app's dependencies.
//
// It owns the lifecycle of:
//   - configuration and mount options
//   - logger + optional New Relic service wrapper
//   - Prometheus collectors
//   - the authentication relay, when authentication is configured
//   - the view engine and its echo renderer
//   - the http.Server of the demo process
package server

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/practio/adminx-os/internal/assets"
	"github.com/practio/adminx-os/internal/auth"
	"github.com/practio/adminx-os/internal/config"
	loggerPkg "github.com/practio/adminx-os/internal/logger"
	"github.com/practio/adminx-os/internal/metrics"
	"github.com/practio/adminx-os/internal/view"
)

// Server is the container holding the shared resources of one admin app.
// It is not the HTTP server itself.
type Server struct {
	// Config holds the process configuration. Options are in Config.App.
	Config *config.Config

	Logger *zerolog.Logger

	// LoggerService holds the New Relic application, if any.
	LoggerService *loggerPkg.LoggerService

	Metrics *metrics.Metrics

	// Relay is nil when authentication is not configured.
	Relay *auth.Relay

	Renderer *view.Renderer

	httpServer *http.Server
}

// New validates the mount options in cfg.App and builds the container.
// logger and loggerService may be nil; the options' collaborators fill in.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	opts := &cfg.App
	opts.MountPath = config.CleanMountPath(opts.MountPath)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = opts.Logger
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if loggerService == nil {
		loggerService = loggerPkg.WithApplication(opts.NewRelic)
	}

	m := metrics.New(opts.Registerer)

	var relay *auth.Relay
	if opts.AuthEnabled() {
		var err error
		relay, err = auth.NewRelay(*opts.Auth, opts.HTTPClient, m)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize auth relay: %w", err)
		}
	}

	engine := newViewEngine(opts, m)

	logger.Debug().
		Str("mount_path", opts.MountPath).
		Bool("auth", opts.AuthEnabled()).
		Strs("views", opts.Views).
		Bool("view_cache", opts.EnableViewEngineCache).
		Msg("adminx configured")

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Metrics:       m,
		Relay:         relay,
		Renderer:      view.NewRenderer(engine, appLocals(opts)),
	}, nil
}

// Options returns the mount options.
func (s *Server) Options() *config.Options {
	return &s.Config.App
}

// appLocals adds the asset flags the layout reads to the configured locals.
func appLocals(opts *config.Options) map[string]any {
	locals := maps.Clone(opts.Locals)
	if locals == nil {
		locals = map[string]any{}
	}
	locals["windyCss"] = assetExists(opts.Assets.WindyCSS)
	locals["windyJs"] = assetExists(opts.Assets.WindyJS)
	return locals
}

func assetExists(location string) bool {
	if location == "" {
		return false
	}
	_, err := os.Stat(location)
	return err == nil
}

func newViewEngine(opts *config.Options, m *metrics.Metrics) *view.Engine {
	var roots []view.Root
	for i, fsys := range opts.ViewFS {
		roots = append(roots, view.Root{Name: fmt.Sprintf("fs%d", i), FS: fsys})
	}
	for _, dir := range opts.Views {
		roots = append(roots, view.Root{Name: filepath.ToSlash(dir), FS: os.DirFS(dir)})
	}

	roots = append(roots, view.Root{Name: "adminx", FS: assets.Views()})

	engineOpts := []view.Option{
		view.WithCache(opts.EnableViewEngineCache),
		view.WithStylesheets(opts.Stylesheets),
		view.WithCompileHook(m.ViewCompiled),
	}
	if opts.BaseDir != "" {
		engineOpts = append(engineOpts, view.WithBaseFS(os.DirFS(opts.BaseDir)))
	}

	return view.New(roots, engineOpts...)
}

// SetupHTTPServer prepares the http.Server serving handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully and flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.LoggerService.Shutdown()

	return nil
}
