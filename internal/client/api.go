package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/okian/nlsql/pkg/logger"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadFile sends r as the single multipart field "file" named filename.
// The part's Content-Type is sniffed from the content.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (*FileUploadResponse, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		c.log.Error(ctx, "read upload failed", logger.String("filename", filename), logger.Error(err))
		return nil, err
	}

	body, contentType, err := multipartFile(filename, data)
	if err != nil {
		c.log.Error(ctx, "encode upload failed", logger.String("filename", filename), logger.Error(err))
		c.metrics.RecordError(EndpointUpload, "encode")
		return nil, err
	}

	resp, err := apiRequest[FileUploadResponse](ctx, c, call{
		op:          "upload file",
		method:      http.MethodPost,
		path:        EndpointUpload,
		endpoint:    EndpointUpload,
		contentType: contentType,
		body:        body,
	})
	if err != nil {
		return nil, err
	}
	c.metrics.AddUploadBytes(int64(len(data)))
	return resp, nil
}

// UploadPath opens path and uploads it under its base name.
func (c *Client) UploadPath(ctx context.Context, path string) (*FileUploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		c.log.Error(ctx, "open upload failed", logger.String("path", path), logger.Error(err))
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return c.UploadFile(ctx, filepath.Base(path), f)
}

// multipartFile encodes data as a form with exactly one file field.
func multipartFile(filename string, data []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		uploadField, quoteEscaper.Replace(filepath.Base(filename))))
	h.Set("Content-Type", mimetype.Detect(data).String())

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// ProcessQuery asks the backend to translate and run a natural language query.
func (c *Client) ProcessQuery(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	cl, err := jsonCall("process query", EndpointQuery, req)
	if err != nil {
		c.log.Error(ctx, "API request failed", logger.String("op", "process query"), logger.Error(err))
		return nil, err
	}
	return apiRequest[QueryResponse](ctx, c, cl)
}

// GetSchema returns the schema of every loaded table.
func (c *Client) GetSchema(ctx context.Context) (*DatabaseSchemaResponse, error) {
	return apiRequest[DatabaseSchemaResponse](ctx, c, getCall("get schema", EndpointSchema))
}

// GenerateInsights asks the backend for observations about a table, column or query.
func (c *Client) GenerateInsights(ctx context.Context, req InsightsRequest) (*InsightsResponse, error) {
	cl, err := jsonCall("generate insights", EndpointInsights, req)
	if err != nil {
		c.log.Error(ctx, "API request failed", logger.String("op", "generate insights"), logger.Error(err))
		return nil, err
	}
	return apiRequest[InsightsResponse](ctx, c, cl)
}

// HealthCheck reports whether the backend and its database are up.
func (c *Client) HealthCheck(ctx context.Context) (*HealthCheckResponse, error) {
	return apiRequest[HealthCheckResponse](ctx, c, getCall("health check", EndpointHealth))
}

// GenerateRandomQuery fetches a sample question for the loaded data.
func (c *Client) GenerateRandomQuery(ctx context.Context) (*RandomQueryResponse, error) {
	return apiRequest[RandomQueryResponse](ctx, c, getCall("generate random query", EndpointRandomQuery))
}

// ExportTable downloads table as CSV and saves it as "<table>.csv".
// It returns the saved path.
func (c *Client) ExportTable(ctx context.Context, table string) (string, error) {
	cl := getCall("export table", EndpointTableExport)
	cl.path = "/table/" + url.PathEscape(table) + "/export"

	blob, err := c.send(ctx, cl)
	if err != nil {
		return "", err
	}
	return c.downloadBlob(ctx, blob, table+".csv", EndpointTableExport)
}

// ExportQueryResults runs req on the backend and saves the result set as
// query_results.csv. It returns the saved path.
func (c *Client) ExportQueryResults(ctx context.Context, req QueryRequest) (string, error) {
	cl, err := jsonCall("export query results", EndpointQueryExport, req)
	if err != nil {
		c.log.Error(ctx, "API request failed", logger.String("op", "export query results"), logger.Error(err))
		return "", err
	}

	blob, err := c.send(ctx, cl)
	if err != nil {
		return "", err
	}
	return c.downloadBlob(ctx, blob, QueryResultsFilename, EndpointQueryExport)
}
