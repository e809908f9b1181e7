// Package client is the HTTP boundary to the natural-language SQL backend.
//
// Every method issues exactly one request. There are no retries and no
// caching; failures are logged and returned to the caller.
package client

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/nlsql/pkg/logger"
	"github.com/okian/nlsql/pkg/metrics"
)

// Backend endpoints, relative to the base URL. EndpointTableExport is the
// route template; requests substitute the escaped table name.
const (
	EndpointUpload      = "/upload"
	EndpointQuery       = "/query"
	EndpointSchema      = "/schema"
	EndpointInsights    = "/insights"
	EndpointHealth      = "/health"
	EndpointRandomQuery = "/generate-random-query"
	EndpointTableExport = "/table/{name}/export"
	EndpointQueryExport = "/query/export"
)

const (
	// HeaderRequestID correlates client log lines with backend access logs.
	HeaderRequestID = "X-Request-ID"

	// QueryResultsFilename names the file ExportQueryResults saves.
	QueryResultsFilename = "query_results.csv"

	uploadField     = "file"
	contentTypeJSON = "application/json"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the backend API. It only reads its fields after New, so one
// Client may be shared between goroutines.
type Client struct {
	baseURL   string
	doer      Doer
	saver     Saver
	log       logger.Logger
	metrics   *metrics.Manager
	requestID func() string
}

// New creates a Client for baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		doer:      &http.Client{},
		saver:     &DirSaver{Dir: "."},
		log:       logger.GetOrNop().Named("client"),
		metrics:   metrics.Global(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base every endpoint is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}
