package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/server"
)

// Handlers groups the handlers of the docs server.
type Handlers struct {
	Health *HealthHandler // Health serves /status.
	Docs   *DocsHandler   // Docs serves the documentation pages.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(s),
		Docs:   NewDocsHandler(s),
	}
}

// Register mounts the docs routes on the admin app.
func (h *Handlers) Register(g *echo.Group) {
	docs := h.Docs

	g.GET("/status", h.Health.CheckHealth)

	g.GET("/", HandleView(docs.Handler, docs.Home, http.StatusOK, "home", &PageRequest{}))
	g.GET("/mixins", HandleView(docs.Handler, docs.Mixins, http.StatusOK, "mixins", &PageRequest{}))
	g.GET("/errors", HandleView(docs.Handler, docs.Errors, http.StatusOK, "errors", &ErrorsPageRequest{}))
	g.POST("/errors", HandleNoContent(docs.Handler, docs.SubmitError, http.StatusNoContent, &ErrorFormRequest{}))
	g.GET("/errors/:code", Handle(docs.Handler, docs.RaiseError, http.StatusOK, &ErrorRequest{}))
}
