package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/nlsql/pkg/logger"
)

// call describes one backend request.
type call struct {
	op          string // human name used in log lines, e.g. "process query"
	method      string
	path        string // escaped path appended to the base URL
	endpoint    string // route template used for metrics and errors
	contentType string
	body        io.Reader
}

// getCall builds a bodiless GET for a fixed endpoint.
func getCall(op, endpoint string) call {
	return call{op: op, method: http.MethodGet, path: endpoint, endpoint: endpoint}
}

// jsonCall builds a POST whose body is the JSON encoding of v.
func jsonCall(op, endpoint string, v any) (call, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return call{}, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return call{
		op:          op,
		method:      http.MethodPost,
		path:        endpoint,
		endpoint:    endpoint,
		contentType: contentTypeJSON,
		body:        bytes.NewReader(data),
	}, nil
}

// send performs the request and returns the full response body of a 2xx
// response. Transport and body read errors are returned unchanged; any other
// status becomes a *StatusError. Every failure is logged before returning.
func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	reqID := c.requestID()
	url := c.baseURL + cl.path
	fields := []logger.Field{
		logger.String("op", cl.op),
		logger.String("method", cl.method),
		logger.String("url", url),
		logger.String("requestID", reqID),
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, url, cl.body)
	if err != nil {
		c.log.Error(ctx, "API request failed", append(fields, logger.Error(err))...)
		c.metrics.RecordError(cl.endpoint, "request")
		return nil, err
	}
	req.Header.Set(HeaderRequestID, reqID)
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.log.Error(ctx, "API request failed", append(fields, logger.Error(err))...)
		c.metrics.RecordError(cl.endpoint, "transport")
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn(ctx, "failed to close response body", append(fields, logger.Error(cerr))...)
		}
	}()

	elapsed := time.Since(start)
	c.metrics.RecordRequest(cl.endpoint, cl.method, resp.StatusCode, float64(elapsed.Microseconds())/1000)
	fields = append(fields, logger.Int("status", resp.StatusCode), logger.Duration("elapsed", elapsed))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body itself is not inspected.
		_, _ = io.Copy(io.Discard, resp.Body)
		serr := &StatusError{StatusCode: resp.StatusCode, Method: cl.method, Endpoint: cl.endpoint}
		c.log.Error(ctx, "API request failed", append(fields, logger.Error(serr))...)
		c.metrics.RecordError(cl.endpoint, "status")
		return nil, serr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error(ctx, "API request failed", append(fields, logger.Error(err))...)
		c.metrics.RecordError(cl.endpoint, "transport")
		return nil, err
	}
	c.log.Debug(ctx, "API request completed", append(fields, logger.Int("bytes", len(data)))...)
	return data, nil
}

// apiRequest sends cl and decodes the JSON response into T. The payload is
// trusted to match T; no further validation happens.
func apiRequest[T any](ctx context.Context, c *Client, cl call) (*T, error) {
	data, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		derr := fmt.Errorf("%w: %s %s: %w", ErrDecode, cl.method, cl.endpoint, err)
		c.log.Error(ctx, "API request failed", logger.String("op", cl.op), logger.Error(derr))
		c.metrics.RecordError(cl.endpoint, "decode")
		return nil, derr
	}
	return &out, nil
}
