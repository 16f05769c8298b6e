package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shogun"

// Metrics holds the collectors shared by the compiler, the cache and the HTTP API.
type Metrics struct {
	Compilations    *prometheus.CounterVec
	CacheRequests   *prometheus.CounterVec
	CacheErrors     *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveStreams   prometheus.Gauge
}

// New registers the collectors with registerer. A nil registerer yields
// unregistered collectors, which is what most tests want.
func New(registerer prometheus.Registerer) *Metrics {
	return &Metrics{
		Compilations: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "css_compilations_total",
			Help:      "Total number of CSS template compilations by animation and outcome.",
		}, []string{"animation", "result"}),
		CacheRequests: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "css_cache_requests_total",
			Help:      "Total number of CSS cache lookups by result (hit or miss).",
		}, []string{"result"}),
		CacheErrors: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "css_cache_errors_total",
			Help:      "Total number of cache backend failures by operation.",
		}, []string{"op"}),
		RequestDuration: promauto.With(registerer).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time (in seconds) spent serving HTTP requests.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route", "status_code"}),
		ActiveStreams: promauto.With(registerer).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "preview_streams_active",
			Help:      "Number of live preview websocket streams.",
		}),
	}
}
