// Package config defines client configuration and how it is loaded.
//
// Conventions:
// - All functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"strings"
	"time"
)

// Backend locations. In development the client talks to the dev server, which
// proxies /api to the backend; otherwise it goes to the backend directly.
const (
	DevAPIPath        = "/api"
	DefaultDevOrigin  = "http://localhost:5173"
	ProductionBaseURL = "http://localhost:8000/api"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Dev selects the proxied development base path.
	Dev bool `koanf:"dev"`

	// DevOrigin is the dev server origin that serves DevAPIPath.
	DevOrigin string `koanf:"dev_origin"`

	// BaseURL overrides base path resolution when set.
	BaseURL string `koanf:"base_url"`

	// Timeout bounds each HTTP request. Zero disables it.
	Timeout time.Duration `koanf:"timeout"`

	// DownloadDir is where CSV exports are saved.
	DownloadDir string `koanf:"download_dir"`

	// MetricsFile, when set, receives a Prometheus textfile dump on exit.
	MetricsFile string `koanf:"metrics_file"`

	// LLMProvider is sent with query requests when non-empty.
	LLMProvider string `koanf:"llm_provider"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Dev:         false,
		DevOrigin:   DefaultDevOrigin,
		Timeout:     30 * time.Second,
		DownloadDir: ".",
		LLMProvider: "openai",
	}
}

// ResolveBaseURL returns the API base URL: the explicit override if any, the
// dev origin plus /api in development, and the direct backend URL otherwise.
func (c *Config) ResolveBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Dev {
		return strings.TrimRight(c.DevOrigin, "/") + DevAPIPath
	}
	return ProductionBaseURL
}
