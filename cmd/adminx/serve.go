package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/practio/adminx-os/internal/config"
	"github.com/practio/adminx-os/internal/handler"
	"github.com/practio/adminx-os/internal/logger"
	"github.com/practio/adminx-os/internal/router"
	"github.com/practio/adminx-os/internal/server"
)

const shutdownTimeout = 30 * time.Second

//go:embed views
var docsViews embed.FS

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the documentation server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides ADMINX_SERVER__PORT)")

	return cmd
}

func serve(ctx context.Context, port string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	views, err := fs.Sub(docsViews, "views")
	if err != nil {
		return err
	}
	cfg.App.ViewFS = append([]fs.FS{views}, cfg.App.ViewFS...)
	cfg.App.Registerer = prometheus.DefaultRegisterer

	s, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	app := router.NewRouter(s, handler.NewHandlers(s))

	mountPath := cfg.App.MountPath
	if mountPath == "" {
		mountPath = "/"
	}

	root := chi.NewRouter()
	root.Use(chimw.RealIP)
	root.Use(chimw.Recoverer)
	root.Handle("/metrics", promhttp.Handler())
	root.Mount(mountPath, app)

	s.SetupHTTPServer(root)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
