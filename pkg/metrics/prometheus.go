// Package metrics provides Prometheus metrics for the nlsql API client.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors for outbound API calls.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec

	bytesUploaded   prometheus.Counter
	bytesDownloaded prometheus.Counter
	filesSaved      *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go process collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nlsql",
		subsystem:        "client",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.requests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "requests_total",
		Help:        "Backend API requests by endpoint, method and status code",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.requestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "request_duration_milliseconds",
		Help:        "Backend API round trip time in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method"})

	m.requestErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "request_errors_total",
		Help:        "Failed backend API calls by endpoint and failure kind",
		ConstLabels: constLabels,
	}, []string{"endpoint", "kind"})

	m.bytesUploaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upload_bytes_total",
		Help:        "File bytes sent through the upload endpoint",
		ConstLabels: constLabels,
	})

	m.bytesDownloaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "download_bytes_total",
		Help:        "CSV bytes received from export endpoints",
		ConstLabels: constLabels,
	})

	m.filesSaved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "files_saved_total",
		Help:        "Exported files written to disk by endpoint",
		ConstLabels: constLabels,
	}, []string{"endpoint"})
}

// RecordRequest records a completed request and its duration.
func (m *Manager) RecordRequest(endpoint, method string, statusCode int, durationMs float64) {
	if !m.enabled {
		return
	}
	m.requests.WithLabelValues(endpoint, method, fmt.Sprint(statusCode)).Inc()
	m.requestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

// RecordError records a failed call. kind is transport, status, decode, encode or save.
func (m *Manager) RecordError(endpoint, kind string) {
	if !m.enabled {
		return
	}
	m.requestErrors.WithLabelValues(endpoint, kind).Inc()
}

// AddUploadBytes adds n to the uploaded bytes counter.
func (m *Manager) AddUploadBytes(n int64) {
	if !m.enabled || n <= 0 {
		return
	}
	m.bytesUploaded.Add(float64(n))
}

// AddDownloadBytes adds n to the downloaded bytes counter.
func (m *Manager) AddDownloadBytes(n int64) {
	if !m.enabled || n <= 0 {
		return
	}
	m.bytesDownloaded.Add(float64(n))
}

// RecordFileSaved increments the saved files counter for an endpoint.
func (m *Manager) RecordFileSaved(endpoint string) {
	if !m.enabled {
		return
	}
	m.filesSaved.WithLabelValues(endpoint).Inc()
}

// Global returns the process-wide manager bound to GetRegistry.
func Global() *Manager {
	return globalManager
}

// RecordRequest records a request on the global manager.
func RecordRequest(endpoint, method string, statusCode int, durationMs float64) {
	globalManager.RecordRequest(endpoint, method, statusCode, durationMs)
}

// RecordError records a failure on the global manager.
func RecordError(endpoint, kind string) {
	globalManager.RecordError(endpoint, kind)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the global registry in text exposition format to path,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
