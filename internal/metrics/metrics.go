// Package metrics exposes engine.Stats as Prometheus gauges, grounded on
// the pack's internal/metrics (p-agent-test-kog-demo): a private
// *prometheus.Registry, one metric per counter, a Handler() for
// promhttp. Starting this exporter is optional (spec.md's Non-goals
// exclude transactional/pub-sub features, not observability — carrying
// ambient metrics is consistent with the rest of the ambient stack).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/juanmilkah/volatix/internal/engine"
)

// Metrics mirrors engine.Stats as Prometheus gauges, refreshed on each
// scrape via Collect.
type Metrics struct {
	Hits             prometheus.Gauge
	Misses           prometheus.Gauge
	Evictions        prometheus.Gauge
	ExpiredRemovals  prometheus.Gauge
	TotalEntries     prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers every gauge.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Hits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "volatix_hits_total",
			Help: "Cumulative number of GET hits.",
		}),
		Misses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "volatix_misses_total",
			Help: "Cumulative number of GET misses.",
		}),
		Evictions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "volatix_evictions_total",
			Help: "Cumulative number of entries removed by eviction.",
		}),
		ExpiredRemovals: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "volatix_expired_removals_total",
			Help: "Cumulative number of entries removed due to TTL expiry.",
		}),
		TotalEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "volatix_total_entries",
			Help: "Current number of live entries in the store.",
		}),
		registry: reg,
	}

	reg.MustRegister(m.Hits, m.Misses, m.Evictions, m.ExpiredRemovals, m.TotalEntries)
	return m
}

// Collect refreshes every gauge from e's current stats. It should be
// called once per scrape, not on a separate timer, so the exported
// values are never stale between calls.
func (m *Metrics) Collect(e *engine.Engine) {
	s := e.GetStats()
	m.Hits.Set(float64(s.Hits))
	m.Misses.Set(float64(s.Misses))
	m.Evictions.Set(float64(s.Evictions))
	m.ExpiredRemovals.Set(float64(s.ExpiredRemovals))
	m.TotalEntries.Set(float64(s.TotalEntries))
}

// Handler returns an http.Handler for e, refreshing the gauges on every
// scrape.
func (m *Metrics) Handler(e *engine.Engine) http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Collect(e)
		inner.ServeHTTP(w, r)
	})
}
