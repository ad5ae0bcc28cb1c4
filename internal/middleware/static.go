package middleware

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/practio/adminx-os/internal/assets"
	"github.com/practio/adminx-os/internal/server"
)

// StaticCacheControl is sent with every static file.
const StaticCacheControl = "public, max-age=86400, immutable"

// Mount serves files of FS under Prefix, relative to the mount path. When
// File is set the mount serves that single file at Prefix.
type Mount struct {
	Prefix string
	FS     fs.FS
	File   string
}

// lookup maps a path relative to the mount path to a file of the mount.
func (m Mount) lookup(rel string) (string, bool) {
	if m.File != "" {
		return m.File, rel == m.Prefix
	}

	prefix := strings.TrimSuffix(m.Prefix, "/") + "/"
	if !strings.HasPrefix(rel, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(rel, prefix)), "/")
	if name == "" || !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

// StaticMounts returns the built-in mounts followed by the configured
// third-party asset locations. Missing locations are logged and skipped.
func StaticMounts(s *server.Server) []Mount {
	opts := s.Options().Assets

	mounts := []Mount{{Prefix: "/", FS: assets.CSS()}}

	if dir, ok := assetDir(s, "windy", opts.WindyCSS); ok {
		mounts = append(mounts, Mount{Prefix: "/windy.css", FS: os.DirFS(filepath.Dir(dir)), File: filepath.Base(dir)})
	}
	if dir, ok := assetDir(s, "windy", opts.WindyJS); ok {
		mounts = append(mounts, Mount{Prefix: "/windy.js", FS: os.DirFS(filepath.Dir(dir)), File: filepath.Base(dir)})
	}
	if dir, ok := assetDir(s, "fonts", opts.Fonts); ok {
		mounts = append(mounts, Mount{Prefix: "/fonts", FS: os.DirFS(dir)})
	}
	if dir, ok := assetDir(s, "highlight.js", opts.HighlightJS); ok {
		mounts = append(mounts, Mount{Prefix: "/libs/highlight.js", FS: os.DirFS(dir)})
	}

	return append(mounts, Mount{Prefix: "/", FS: assets.Public()})
}

func assetDir(s *server.Server, name, location string) (string, bool) {
	if location == "" {
		s.Logger.Debug().Str("asset", name).Msg("asset location not configured")
		return "", false
	}
	if _, err := os.Stat(location); err != nil {
		s.Logger.Warn().Err(err).Str("asset", name).Str("location", location).Msg("asset location not found")
		return "", false
	}
	return location, true
}

// Static serves GET and HEAD requests for files of the mounts, in order,
// and passes every other request on. Each mount is served by echo's static
// middleware.
func Static(mountPath string, mounts ...Mount) echo.MiddlewareFunc {
	mountPath = strings.TrimSuffix(mountPath, "/")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := next
		for i := len(mounts) - 1; i >= 0; i-- {
			h = mounts[i].serve(mountPath, h)
		}

		return func(c echo.Context) error {
			method := c.Request().Method
			if method != http.MethodGet && method != http.MethodHead {
				return next(c)
			}
			if !strings.HasPrefix(c.Request().URL.Path, mountPath+"/") {
				return next(c)
			}
			return h(c)
		}
	}
}

// serve answers with the file of the mount matching the request, or calls
// next with the request untouched.
func (m Mount) serve(mountPath string, next echo.HandlerFunc) echo.HandlerFunc {
	static := middleware.StaticWithConfig(middleware.StaticConfig{
		Filesystem: http.FS(m.FS),
	})

	return func(c echo.Context) error {
		name, ok := m.lookup(strings.TrimPrefix(c.Request().URL.Path, mountPath))
		if !ok {
			return next(c)
		}

		req, routePath := c.Request(), c.Path()
		restored := false
		restore := func() {
			c.SetRequest(req)
			c.SetPath(routePath)
			c.Response().Header().Del(echo.HeaderCacheControl)
			restored = true
		}

		// The static middleware reads the file name from the request path,
		// or from the wildcard param when the route ends in "*".
		r := req.Clone(req.Context())
		r.URL.Path = "/" + name
		r.URL.RawPath = ""
		c.SetRequest(r)
		c.SetPath("")
		c.Response().Header().Set(echo.HeaderCacheControl, StaticCacheControl)

		err := static(func(c echo.Context) error {
			restore()
			return next(c)
		})(c)

		if !restored {
			c.SetRequest(req)
			c.SetPath(routePath)
		}
		return err
	}
}
