package telemetry

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PDF generation outcomes
const (
	PDFResultRendered = "rendered"
	PDFResultCached   = "cached"
	PDFResultFailed   = "failed"
)

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec   // by method, path, status
	HTTPRequestDuration *prometheus.HistogramVec // by method, path

	PDFRenderDuration *prometheus.HistogramVec // chromedp time, by document type and paper
	PDFGenerations    *prometheus.CounterVec   // by result
	PDFPages          prometheus.Histogram

	DocumentTransitions *prometheus.CounterVec // by document type and target status
}

// NewMetrics registers all collectors on a fresh registry together with
// the Go runtime and process collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status code",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		PDFRenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdf_render_duration_seconds",
				Help:    "Time spent producing a PDF in the headless browser",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"document_type", "paper_size"},
		),
		PDFGenerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdf_generations_total",
				Help: "PDF generation requests by result (rendered, cached, failed)",
			},
			[]string{"result"},
		),
		PDFPages: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pdf_pages",
				Help:    "Number of pages of rendered PDFs",
				Buckets: []float64{1, 2, 3, 5, 10, 20},
			},
		),

		DocumentTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_transitions_total",
				Help: "Commercial document lifecycle transitions",
			},
			[]string{"document_type", "status"},
		),
	}
}

// RegisterDBStats exposes the connection pool statistics of db
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

// ObserveRender records a successful browser render
func (m *Metrics) ObserveRender(docType, paper string, d time.Duration, pages int) {
	if m == nil {
		return
	}
	m.PDFRenderDuration.WithLabelValues(docType, paper).Observe(d.Seconds())
	m.PDFPages.Observe(float64(pages))
	m.PDFGenerations.WithLabelValues(PDFResultRendered).Inc()
}

// IncPDFResult counts a cache hit or a failure
func (m *Metrics) IncPDFResult(result string) {
	if m == nil {
		return
	}
	m.PDFGenerations.WithLabelValues(result).Inc()
}

// IncTransition counts a document reaching status
func (m *Metrics) IncTransition(docType, status string) {
	if m == nil {
		return
	}
	m.DocumentTransitions.WithLabelValues(docType, status).Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
