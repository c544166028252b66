// Package metric holds the Prometheus metrics of the BMRS client and the
// download service. A nil *Metrics is valid and records nothing.
package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "elexon"

type Metrics struct {
	registry *prometheus.Registry

	// BMRS client
	requestsTotal   *prometheus.CounterVec   // By path and status code
	retriesTotal    *prometheus.CounterVec   // By path and status code
	requestDuration *prometheus.HistogramVec // By path

	// Downloads
	downloadsTotal *prometheus.CounterVec // By dataset and result class
	chunksTotal    *prometheus.CounterVec // By dataset
	rowsTotal      *prometheus.CounterVec // By dataset
}

// New creates the metrics on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bmrs",
			Name:      "requests_total",
			Help:      "Total number of BMRS API attempts",
		}, []string{"path", "code"}),

		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bmrs",
			Name:      "retries_total",
			Help:      "Total number of BMRS API attempts retried after a transient status",
		}, []string{"path", "code"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bmrs",
			Name:      "request_duration_seconds",
			Help:      "BMRS API attempt duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"path"}),

		downloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "download",
			Name:      "total",
			Help:      "Total number of downloads by result",
		}, []string{"dataset", "result"}), // result: ok or an error class

		chunksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "download",
			Name:      "chunks_total",
			Help:      "Total number of sub-requests issued by downloads",
		}, []string{"dataset"}),

		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "download",
			Name:      "rows_total",
			Help:      "Total number of records returned by downloads",
		}, []string{"dataset"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.retriesTotal,
		m.requestDuration,
		m.downloadsTotal,
		m.chunksTotal,
		m.rowsTotal,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAttempt(path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRetry(path string, status int) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// ObserveDownload records a finished download. result is "ok" or the error class.
func (m *Metrics) ObserveDownload(dataset, result string, chunks, rows int) {
	if m == nil {
		return
	}
	m.downloadsTotal.WithLabelValues(dataset, result).Inc()
	m.chunksTotal.WithLabelValues(dataset).Add(float64(chunks))
	m.rowsTotal.WithLabelValues(dataset).Add(float64(rows))
}
