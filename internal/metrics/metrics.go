// Package metrics exports the gateway's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps the collectors the gateway exports. A nil *Metrics is a
// valid no-op receiver; tests and tools that do not scrape pass nil.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	poolAvailable  prometheus.Gauge
	acquireWait    prometheus.Histogram
	eventsReceived *prometheus.CounterVec
	commandsSent   *prometheus.CounterVec
	reconnects     prometheus.Counter
}

// New registers the gateway collectors with the default registry. Call it
// once per process.
func New() *Metrics {
	return &Metrics{
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ibrest_http_requests_total",
			Help: "HTTP requests served, by route, method, and status code",
		}, []string{"route", "method", "status"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ibrest_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route"}),
		poolAvailable: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ibrest_pool_available_connections",
			Help: "Connections currently checked in to the pool",
		}),
		acquireWait: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ibrest_pool_acquire_wait_seconds",
			Help:    "Time spent waiting to check a connection out of the pool",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		eventsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ibrest_upstream_events_total",
			Help: "Upstream events demultiplexed, by event type",
		}, []string{"type"}),
		commandsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ibrest_upstream_commands_total",
			Help: "Commands written upstream, by command name",
		}, []string{"cmd"}),
		reconnects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ibrest_upstream_reconnects_total",
			Help: "Successful redials of dropped upstream sessions",
		}),
	}
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(route, method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SetPoolAvailable tracks the checked-in connection count.
func (m *Metrics) SetPoolAvailable(n int) {
	if m == nil {
		return
	}
	m.poolAvailable.Set(float64(n))
}

// ObserveAcquireWait records how long one checkout waited.
func (m *Metrics) ObserveAcquireWait(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.acquireWait.Observe(elapsed.Seconds())
}

// EventReceived counts one demultiplexed upstream event.
func (m *Metrics) EventReceived(typ string) {
	if m == nil {
		return
	}
	m.eventsReceived.WithLabelValues(typ).Inc()
}

// CommandSent counts one command written upstream.
func (m *Metrics) CommandSent(cmd string) {
	if m == nil {
		return
	}
	m.commandsSent.WithLabelValues(cmd).Inc()
}

// Reconnect counts one successful redial of a dropped session.
func (m *Metrics) Reconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

// Handler exposes the default registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
