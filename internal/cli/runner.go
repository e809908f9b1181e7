package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/nlsql/internal/client"
	"github.com/okian/nlsql/internal/config"
	"github.com/okian/nlsql/pkg/logger"
	"github.com/okian/nlsql/pkg/metrics"
)

// Exit codes returned by Main.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ErrUsage marks command line mistakes.
var ErrUsage = errors.New("usage error")

// flagValues holds global flags. Only flags that were set override config.
type flagValues struct {
	url         string
	dev         bool
	timeout     string
	out         string
	provider    string
	logLevel    string
	logFormat   string
	metricsFile string
	help        bool
}

// Main runs the tool with args (without the program name) and returns the exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("nlsql", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { ShowHelp(stderr) }

	var fv flagValues
	fs.StringVar(&fv.url, "url", "", "Backend API base URL")
	fs.BoolVar(&fv.dev, "dev", false, "Use the dev server proxy")
	fs.StringVar(&fv.timeout, "timeout", "", "Per request timeout")
	fs.StringVar(&fv.out, "out", "", "Directory for CSV exports")
	fs.StringVar(&fv.provider, "provider", "", "LLM provider sent with queries")
	fs.StringVar(&fv.logLevel, "log-level", "", "Log level")
	fs.StringVar(&fv.logFormat, "log-format", "", "Log format")
	fs.StringVar(&fv.metricsFile, "metrics-file", "", "Prometheus textfile output")
	fs.BoolVar(&fv.help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	if fv.help {
		ShowHelp(stdout)
		return ExitOK
	}
	if fs.NArg() == 0 {
		ShowHelp(stderr)
		return ExitUsage
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "failed to load config: "+err.Error())
		return ExitFailure
	}
	if err := applyFlags(fs, &fv, cfg); err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return ExitUsage
	}
	if err := SetupLogging(cfg, stderr); err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return ExitFailure
	}
	log := logger.Get()

	c := client.New(cfg.ResolveBaseURL(),
		client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		client.WithDownloadDir(cfg.DownloadDir),
		client.WithLogger(log.Named("client")),
	)
	log.Debug(ctx, "client ready", logger.String("baseURL", c.BaseURL()), logger.Bool("dev", cfg.Dev))

	runErr := Run(ctx, c, cfg, fs.Arg(0), fs.Args()[1:], stdout)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn(ctx, "failed to write metrics file", logger.String("path", cfg.MetricsFile), logger.Error(err))
		}
	}

	switch {
	case runErr == nil:
		return ExitOK
	case errors.Is(runErr, ErrUsage):
		_, _ = fmt.Fprintln(stderr, runErr.Error())
		return ExitUsage
	default:
		_, _ = fmt.Fprintln(stderr, "error: "+runErr.Error())
		return ExitFailure
	}
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(fs *flag.FlagSet, fv *flagValues, cfg *config.Config) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.BaseURL = fv.url
		case "dev":
			cfg.Dev = fv.dev
		case "timeout":
			cfg.Timeout, err = time.ParseDuration(fv.timeout)
		case "out":
			cfg.DownloadDir = fv.out
		case "provider":
			cfg.LLMProvider = fv.provider
		case "log-level":
			cfg.LogLevel = fv.logLevel
		case "log-format":
			cfg.LogFormat = fv.logFormat
		case "metrics-file":
			cfg.MetricsFile = fv.metricsFile
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

// Run executes one command against c and prints its result to stdout.
func Run(ctx context.Context, c *client.Client, cfg *config.Config, cmd string, args []string, stdout io.Writer) error {
	switch cmd {
	case "health":
		return printResult(stdout)(c.HealthCheck(ctx))
	case "schema":
		return printResult(stdout)(c.GetSchema(ctx))
	case "random":
		return printResult(stdout)(c.GenerateRandomQuery(ctx))
	case "upload":
		if len(args) != 1 {
			return fmt.Errorf("%w: upload takes exactly one file", ErrUsage)
		}
		return printResult(stdout)(c.UploadPath(ctx, args[0]))
	case "query":
		text, err := joinText(cmd, args)
		if err != nil {
			return err
		}
		return printResult(stdout)(c.ProcessQuery(ctx, client.QueryRequest{Query: text, LLMProvider: cfg.LLMProvider}))
	case "insights":
		req, err := parseInsights(args)
		if err != nil {
			return err
		}
		return printResult(stdout)(c.GenerateInsights(ctx, req))
	case "export-table":
		if len(args) != 1 {
			return fmt.Errorf("%w: export-table takes exactly one table name", ErrUsage)
		}
		return printPath(stdout)(c.ExportTable(ctx, args[0]))
	case "export-query":
		text, err := joinText(cmd, args)
		if err != nil {
			return err
		}
		return printPath(stdout)(c.ExportQueryResults(ctx, client.QueryRequest{Query: text, LLMProvider: cfg.LLMProvider}))
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func joinText(cmd string, args []string) (string, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", fmt.Errorf("%w: %s needs a question", ErrUsage, cmd)
	}
	return text, nil
}

func parseInsights(args []string) (client.InsightsRequest, error) {
	fs := flag.NewFlagSet("insights", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var req client.InsightsRequest
	fs.StringVar(&req.TableName, "table", "", "table name")
	fs.StringVar(&req.ColumnName, "column", "", "column name")
	fs.StringVar(&req.Query, "query", "", "natural language query")
	if err := fs.Parse(args); err != nil {
		return req, fmt.Errorf("%w: insights: %w", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return req, fmt.Errorf("%w: insights: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return req, nil
}

// printResult returns a function that writes a decoded response as indented JSON.
func printResult(w io.Writer) func(any, error) error {
	return func(v any, err error) error {
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// printPath returns a function that writes the path an export was saved to.
func printPath(w io.Writer) func(string, error) error {
	return func(path string, err error) error {
		if err != nil {
			return err
		}
		_, werr := fmt.Fprintln(w, path)
		return werr
	}
}
