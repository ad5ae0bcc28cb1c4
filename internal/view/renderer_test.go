package view

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practio/adminx-os/internal/reqctx"
)

func TestRendererMergesLocals(t *testing.T) {
	fsys := fstest.MapFS{"page.html": {Data: []byte(
		`{{.title}}|{{.csrfToken}}|{{.who}}|{{call .href "~/users" nil}}`,
	)}}
	r := NewRenderer(New([]Root{{Name: "views", FS: fsys}}), map[string]any{
		"title": "Admin",
		"who":   "app",
	})

	e := echo.New()
	e.Renderer = r
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	base, _ := url.Parse("https://app.example.com/admin/")
	reqctx.Store(c, reqctx.Context{}.WithBaseHref(base).WithFullHref(base).WithCSRFToken("tok"))

	require.NoError(t, c.Render(http.StatusOK, "page", map[string]any{"who": "call"}))
	assert.Equal(t, "Admin|tok|call|/admin/users", rec.Body.String())
}

func TestRendererWrapsNonMapData(t *testing.T) {
	fsys := fstest.MapFS{"page.html": {Data: []byte(`{{.data.Name}}`)}}
	r := NewRenderer(New([]Root{{Name: "views", FS: fsys}}), nil)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "page", struct{ Name string }{"Ada"}, nil))
	assert.Equal(t, "Ada", buf.String())
}
