package angzarr

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters and histograms every component RPC surface
// reports through. One instance is shared across a server's handlers.
type Metrics struct {
	Dispatched *prometheus.CounterVec
	Rejected   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics registers the component's metric families against its own
// registry, so two components in the same process (tests, examples) never
// collide on prometheus's default global registry.
func NewMetrics(registry *prometheus.Registry, component string) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		Dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "angzarr",
			Subsystem: component,
			Name:      "dispatched_total",
			Help:      "Commands or events dispatched, by type and outcome.",
		}, []string{"type", "outcome"}),
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "angzarr",
			Subsystem: component,
			Name:      "rejected_total",
			Help:      "Compensation/revocation notifications handled, by issuer type.",
		}, []string{"issuer_type"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "angzarr",
			Subsystem: component,
			Name:      "dispatch_duration_seconds",
			Help:      "Dispatch latency, by type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
	}
}

// ServeMetrics starts a plain HTTP server exposing the registry's metrics at
// /metrics. Runs until the process exits; call in a goroutine alongside the
// gRPC listener.
func ServeMetrics(addr string, registry *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
