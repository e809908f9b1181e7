package client

import (
	"net/http"

	"github.com/okian/nlsql/pkg/logger"
	"github.com/okian/nlsql/pkg/metrics"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithDoer sets the transport used for every request.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithHTTPClient is WithDoer for a concrete *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.doer = hc
		}
	}
}

// WithLogger sets the logger failures and downloads are reported to.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSaver sets where exported CSV files go.
func WithSaver(s Saver) Option {
	return func(c *Client) {
		if s != nil {
			c.saver = s
		}
	}
}

// WithDownloadDir saves exports into dir.
func WithDownloadDir(dir string) Option {
	return func(c *Client) {
		if dir != "" {
			c.saver = &DirSaver{Dir: dir}
		}
	}
}

// WithMetrics sets the metrics manager. Defaults to metrics.Global().
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithRequestIDFunc overrides how X-Request-ID values are generated.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}
