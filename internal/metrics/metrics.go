// Package metrics exposes Prometheus collectors for the portal.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	exports        *prometheus.CounterVec
	exportDuration prometheus.Histogram
	purges         *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hosteldesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status.",
		}, []string{"method", "route", "status"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hosteldesk",
			Name:      "student_submissions_total",
			Help:      "Add-student submissions by outcome.",
		}, []string{"result"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hosteldesk",
			Name:      "pdf_exports_total",
			Help:      "PDF exports by outcome.",
		}, []string{"result"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hosteldesk",
			Name:      "pdf_export_duration_seconds",
			Help:      "Time from export start to completion.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		purges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hosteldesk",
			Name:      "blob_purges_total",
			Help:      "Student blob purges by outcome.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.submissions, m.exports, m.exportDuration, m.purges,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Submission(err error) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) Export(err error, took time.Duration) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(result(err)).Inc()
	m.exportDuration.Observe(took.Seconds())
}

func (m *Metrics) Purge(err error) {
	if m == nil {
		return
	}
	m.purges.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
