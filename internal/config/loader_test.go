package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/nlsql/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Dev, convey.ShouldBeFalse)
				convey.So(cfg.Timeout, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.DownloadDir, convey.ShouldEqual, ".")
				convey.So(cfg.ResolveBaseURL(), convey.ShouldEqual, "http://localhost:8000/api")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("NLSQL_DEV", "true")
			_ = os.Setenv("NLSQL_DEV_ORIGIN", "http://localhost:3000")
			_ = os.Setenv("NLSQL_TIMEOUT", "45s")
			_ = os.Setenv("NLSQL_DOWNLOAD_DIR", "/tmp/exports")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Dev, convey.ShouldBeTrue)
				convey.So(cfg.Timeout, convey.ShouldEqual, 45*time.Second)
				convey.So(cfg.DownloadDir, convey.ShouldEqual, "/tmp/exports")
				convey.So(cfg.ResolveBaseURL(), convey.ShouldEqual, "http://localhost:3000/api")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# backend behind a gateway
base_url: "https://sql.example.com/api/"
log_level: debug
timeout: 5s
llm_provider: anthropic
`
			tmpFile := createTempFile(yamlContent, "nlsql-config-*.yaml")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("NLSQL_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Timeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.LLMProvider, convey.ShouldEqual, "anthropic")
				convey.So(cfg.ResolveBaseURL(), convey.ShouldEqual, "https://sql.example.com/api")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
log_level: debug
timeout: 5s
`
			tmpFile := createTempFile(yamlContent, "nlsql-config-*.yaml")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("NLSQL_CONFIG", tmpFile)
			_ = os.Setenv("NLSQL_TIMEOUT", "10s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Timeout, convey.ShouldEqual, 10*time.Second)
			})
		})

		convey.Convey("When a dotenv file supplies values", func() {
			tmpFile := createTempFile("NLSQL_BASE_URL=http://dotenv.local:8000/api\nNLSQL_LOG_FORMAT=json\n", "nlsql-*.env")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("NLSQL_DOTENV", tmpFile)
			defer clearConfigEnvVars()

			convey.Convey("Then they are applied like env vars", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.ResolveBaseURL(), convey.ShouldEqual, "http://dotenv.local:8000/api")
			})

			convey.Convey("Then the process environment wins over the file", func() {
				_ = os.Setenv("NLSQL_BASE_URL", "http://env.local/api")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ResolveBaseURL(), convey.ShouldEqual, "http://env.local/api")
			})
		})

		convey.Convey("When the named dotenv file is missing", func() {
			_ = os.Setenv("NLSQL_DOTENV", "/non/existent/.env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempFile(`invalid: yaml: content: [`, "nlsql-config-*.yaml")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("NLSQL_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("NLSQL_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid duration", func() {
			_ = os.Setenv("NLSQL_TIMEOUT", "soon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When the base URL is relative", func() {
			_ = os.Setenv("NLSQL_BASE_URL", "/api")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "base_url")
			})
		})

		convey.Convey("When the timeout is negative", func() {
			_ = os.Setenv("NLSQL_TIMEOUT", "-1s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When dev mode has a malformed origin", func() {
			_ = os.Setenv("NLSQL_DEV", "true")
			_ = os.Setenv("NLSQL_DEV_ORIGIN", "localhost")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "dev_origin")
			})
		})

		convey.Convey("When the download directory is blanked", func() {
			_ = os.Setenv("NLSQL_DOWNLOAD_DIR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "download_dir must not be empty")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"NLSQL_CONFIG",
		"NLSQL_DOTENV",
		"NLSQL_LOG_LEVEL",
		"NLSQL_LOG_FORMAT",
		"NLSQL_DEV",
		"NLSQL_DEV_ORIGIN",
		"NLSQL_BASE_URL",
		"NLSQL_TIMEOUT",
		"NLSQL_DOWNLOAD_DIR",
		"NLSQL_METRICS_FILE",
		"NLSQL_LLM_PROVIDER",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempFile(content, pattern string) string {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
