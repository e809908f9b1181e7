package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names that steer loading itself.
const (
	EnvPrefix     = "NLSQL_"
	EnvConfigFile = "NLSQL_CONFIG"
	EnvDotenvFile = "NLSQL_DOTENV"
	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if NLSQL_CONFIG is set
//  3. env (prefix NLSQL_), including values read from a .env file
//
// The .env file (NLSQL_DOTENV, default ".env") never overrides variables that
// are already set in the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	base := New(ctx)
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	// NLSQL_BASE_URL -> base_url. Underscores are kept to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotenv() error {
	path := os.Getenv(EnvDotenvFile)
	explicit := path != ""
	if !explicit {
		path = defaultDotenv
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if c.DownloadDir == "" {
		return fmt.Errorf("%w: download_dir must not be empty", ErrInvalidConfig)
	}
	if c.Dev && c.BaseURL == "" {
		if err := checkAbsoluteURL("dev_origin", c.DevOrigin); err != nil {
			return err
		}
	}
	if c.BaseURL != "" {
		if err := checkAbsoluteURL("base_url", c.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

func checkAbsoluteURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute http(s) URL, got %q", ErrInvalidConfig, key, raw)
	}
	return nil
}
