// Package metrics exposes Prometheus collectors for HTTP traffic and billing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry so tests can build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	BillsPosted            *prometheus.CounterVec
	BillPostFailures       *prometheus.CounterVec
	InsufficientStock      prometheus.Counter
	MovementFailures       prometheus.Counter
	TotalsMismatch         prometheus.Counter
	ReceiptPrintFailures   prometheus.Counter
	IdempotencyKeysPurged  prometheus.Counter
	IdempotentReplaysTotal prometheus.Counter
}

// New registers every collector under the given prefix
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		BillsPosted: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_bills_posted_total",
			Help: "Bills persisted, by posting mode",
		}, []string{"mode"}),
		BillPostFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_bill_post_failures_total",
			Help: "Failed bill posts, by error type",
		}, []string{"type"}),
		InsufficientStock: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_insufficient_stock_total",
			Help: "Bill posts rejected for insufficient stock",
		}),
		MovementFailures: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_inventory_debit_failures_total",
			Help: "Inventory debits that failed after the bill was written",
		}),
		TotalsMismatch: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_client_totals_mismatch_total",
			Help: "Bills whose client totals differed from the server computation",
		}),
		ReceiptPrintFailures: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_receipt_print_failures_total",
			Help: "Receipts that could not be sent to the printer",
		}),
		IdempotencyKeysPurged: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_idempotency_keys_purged_total",
			Help: "Expired idempotency keys removed by the scheduler",
		}),
		IdempotentReplaysTotal: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_idempotent_replays_total",
			Help: "Requests answered from a stored idempotent response",
		}),
	}
}

// NewNop returns metrics backed by a throwaway registry
func NewNop() *Metrics {
	return New("nop")
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
