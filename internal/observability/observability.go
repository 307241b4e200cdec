// Package observability exposes the Prometheus counters and histograms
// named in §3.9's ambient supplement, plus an HTTP handler for them; no
// command in this module updates the instruments or serves the handler.
// Grounded on the teacher's own observability/prometheus.go (a
// Prometheus registry wrapped behind a promhttp.Handler); the OTel
// meter-provider layer the teacher wraps around it is dropped here
// since this module has nothing else that emits OTel instruments and
// no other pack example imports go.opentelemetry.io for a Prometheus
// sink, so the instruments are registered directly against a
// prometheus.Registry via promauto.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument the analyzer run updates.
type Metrics struct {
	registry *prometheus.Registry

	FilesAnalyzedTotal    prometheus.Counter
	ParseErrorsTotal      prometheus.Counter
	SnapshotWriteDuration prometheus.Histogram
	PolicyViolationsTotal *prometheus.CounterVec
}

// New creates an independent registry and registers every instrument
// against it, so repeated calls (e.g. in tests) never collide.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		FilesAnalyzedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "hotspots_files_analyzed_total",
			Help: "Total number of source files analyzed.",
		}),
		ParseErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "hotspots_parse_errors_total",
			Help: "Total number of files that failed to parse.",
		}),
		SnapshotWriteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "hotspots_snapshot_write_duration_seconds",
			Help:    "Duration of snapshot store write operations.",
			Buckets: prometheus.DefBuckets,
		}),
		PolicyViolationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hotspots_policy_violations_total",
			Help: "Total number of policy rule firings, by severity.",
		}, []string{"severity"}),
	}
}

// Handler serves the /metrics scrape endpoint for this instance's
// registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
