// Package config holds the mount options of the admin app and the
// process configuration of the demo server.
//
// Process configuration is read from the environment (optionally seeded
// from a `.env` file), mapped into Config and validated so the server
// fails fast on bad or missing values.
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	// Loads `.env` into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
//
// A double underscore nests: ADMINX_APP__AUTH__COOKIE_NAME maps to
// app.auth.cookie_name.
const EnvPrefix = "ADMINX_"

// listKeys are split on commas when read from the environment.
var listKeys = map[string]bool{
	"app.views":                          true,
	"observability.health_checks.checks": true,
}

// Config is the root configuration of the demo server. Observability
// starts from DefaultObservabilityConfig, so partial blocks are fine.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	App           Options              `koanf:"app"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development staging production test"`
}

// ServerConfig groups settings for the HTTP server runtime. Timeouts are
// in seconds.
type ServerConfig struct {
	Port         string `koanf:"port" validate:"required"`
	ReadTimeout  int    `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout int    `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout  int    `koanf:"idle_timeout" validate:"min=1"`
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Primary.Env == "production"
}

func defaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		App:           DefaultOptions(),
		Observability: DefaultObservabilityConfig(),
	}
}

// ForOptions returns the default process configuration around mount
// options, for admin apps mounted by another server.
func ForOptions(opts Options) *Config {
	cfg := defaultConfig()
	cfg.App = opts
	return cfg
}

// LoadConfig reads the environment into a Config on top of the defaults
// and validates it.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")

		if listKeys[key] {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return key, parts
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "load env variables")
	}

	mainConfig := defaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}

	mainConfig.Observability.ServiceName = "adminx"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid observability config")
	}

	// Error details are for operators; production never shows them.
	if mainConfig.IsProduction() {
		mainConfig.App.ReturnErrorDetails = false
	}

	return mainConfig, nil
}
