package config

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/practio/adminx-os/internal/view"
)

// Options configures one mounted admin app.
type Options struct {
	// MountPath is the path the app is mounted under, e.g. "/admin".
	// Routes and the base href are relative to it.
	MountPath string `koanf:"mount_path"`

	// Auth enables the authentication relay. Nil disables authentication
	// and authorization entirely.
	Auth *AuthConfig `koanf:"auth" validate:"omitempty"`

	// Views are directories searched for templates before the built-in
	// views.
	Views []string `koanf:"views"`

	// BaseDir resolves template includes given as absolute paths.
	BaseDir string `koanf:"base_dir"`

	EnableViewEngineCache bool `koanf:"enable_view_engine_cache"`
	ReturnErrorDetails    bool `koanf:"return_error_details"`

	// BodyLimit caps request bodies, e.g. "16M".
	BodyLimit string `koanf:"body_limit" validate:"required"`

	// Locals are exposed to every template.
	Locals map[string]any `koanf:"locals"`

	Assets AssetsConfig `koanf:"assets"`

	// RateLimit caps requests per second per client IP. Zero disables it.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`

	// Runtime collaborators. All are optional.
	Logger      *zerolog.Logger         `koanf:"-" validate:"-"`
	NewRelic    *newrelic.Application   `koanf:"-" validate:"-"`
	HTTPClient  *http.Client            `koanf:"-" validate:"-"`
	Registerer  prometheus.Registerer   `koanf:"-" validate:"-"`
	ViewFS      []fs.FS                 `koanf:"-" validate:"-"`
	Stylesheets view.StylesheetCompiler `koanf:"-" validate:"-"`
}

// AuthConfig points the authentication relay at the identity service.
type AuthConfig struct {
	// CookieName is the session cookie forwarded to the identity service.
	CookieName string `koanf:"cookie_name" validate:"required"`

	// BaseURL is the identity service; failed authentication redirects
	// here with a redirect_uri parameter.
	BaseURL string `koanf:"base_url" validate:"required,url"`
}

// AssetsConfig lists optional third-party asset locations on disk. Missing
// locations are logged and skipped.
type AssetsConfig struct {
	Fonts       string `koanf:"fonts"`
	HighlightJS string `koanf:"highlight_js"`
	WindyCSS    string `koanf:"windy_css"`
	WindyJS     string `koanf:"windy_js"`
}

// DefaultOptions returns the options a mount starts from.
func DefaultOptions() Options {
	return Options{
		EnableViewEngineCache: true,
		ReturnErrorDetails:    true,
		BodyLimit:             "16M",
		Locals:                map[string]any{},
	}
}

// Validate checks the options with their struct tags.
func (o *Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		return errors.Wrap(err, "invalid adminx options")
	}
	return nil
}

// CleanMountPath returns p with one leading slash and no trailing slash.
// The root mount is "".
func CleanMountPath(p string) string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// AuthEnabled reports whether the authentication relay is installed.
func (o *Options) AuthEnabled() bool {
	return o.Auth != nil
}
