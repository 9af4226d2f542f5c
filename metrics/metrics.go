// FILE: lixenwraith/logsink/metrics/metrics.go
// Package metrics exposes pipeline and HTTP counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/logsink"
)

const namespace = "logsink"

// StatsSource is anything that can report pipeline statistics
type StatsSource interface {
	Stats() logsink.Stats
}

// Metrics owns a private registry with the pipeline collector and request metrics
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tcpLinesTotal   *prometheus.CounterVec
}

// New registers the pipeline collector, request metrics and the Go runtime collectors
func New(source StatsSource) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by path and status code",
			},
			[]string{"path", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by path",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"path"},
		),
		tcpLinesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tcp_lines_total",
				Help:      "Lines received over raw TCP by outcome",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		NewCollector(source),
		m.requestsTotal,
		m.requestDuration,
		m.tcpLinesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the exposition handler for the private registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(path string, code int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// ObserveTCPLine records one line received over TCP
func (m *Metrics) ObserveTCPLine(outcome string) {
	m.tcpLinesTotal.WithLabelValues(outcome).Inc()
}
