// Package cli implements the nlsql command line tool on top of the API client.
package cli

import (
	"fmt"
	"io"

	"github.com/okian/nlsql/internal/config"
	"github.com/okian/nlsql/pkg/logger"
)

// SetupLogging initializes the global logger from cfg, writing to w.
func SetupLogging(cfg *config.Config, w io.Writer) error {
	if err := logger.InitWithOptions(logger.Options{
		Writer: w,
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `nlsql - command line client for the natural language SQL backend

Usage:
  nlsql [options] <command> [arguments]

Commands:
  health                     Check backend and database status
  schema                     Print the schema of all loaded tables
  upload <file>              Upload a CSV or JSON file as a new table
  query <text>               Translate a question to SQL and run it
  insights [-table t] [-column c] [-query q]
                             Generate insights about a table, column or query
  random                     Suggest a random question for the loaded data
  export-table <name>        Save a table as <name>.csv
  export-query <text>        Save the results of a question as query_results.csv

Options:
  -url string           Backend API base URL (overrides -dev)
  -dev                  Use the dev server proxy at <dev_origin>/api
  -timeout duration     Per request timeout, 0 disables (default 30s)
  -out string           Directory for CSV exports (default ".")
  -provider string      LLM provider sent with queries (default "openai")
  -log-level string     debug, info, warn or error
  -log-format string    text or json
  -metrics-file string  Write Prometheus metrics to this file on exit
  -help                 Show this help message

Configuration is also read from NLSQL_* environment variables, a .env file and
the YAML file named by NLSQL_CONFIG. Flags win over all of them.

Examples:
  nlsql health
  nlsql -dev upload ./data/sales.csv
  nlsql query "Which customers spent the most last month?"
  nlsql -out ./exports export-table orders
`)
}
