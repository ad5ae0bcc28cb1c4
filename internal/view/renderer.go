package view

import (
	"io"
	"maps"

	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/reqctx"
)

// Renderer is the echo.Renderer of the admin app. Template data is the
// app locals, overridden by the request locals, overridden by the data
// passed to c.Render.
type Renderer struct {
	engine *Engine
	locals map[string]any
}

// NewRenderer wraps engine. locals are exposed to every view.
func NewRenderer(engine *Engine, locals map[string]any) *Renderer {
	return &Renderer{engine: engine, locals: maps.Clone(locals)}
}

// Engine returns the wrapped engine.
func (r *Renderer) Engine() *Engine {
	return r.engine
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	return r.engine.Render(w, name, r.Data(c, data))
}

// Data builds the template data of a render call.
func (r *Renderer) Data(c echo.Context, data any) map[string]any {
	merged := make(map[string]any, len(r.locals)+16)
	maps.Copy(merged, r.locals)
	if c != nil {
		maps.Copy(merged, reqctx.From(c).Locals())
	}

	switch d := data.(type) {
	case nil:
	case map[string]any:
		maps.Copy(merged, d)
	case echo.Map:
		maps.Copy(merged, d)
	default:
		merged["data"] = data
	}
	return merged
}
