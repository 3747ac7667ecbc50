package search

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the ambient observability surface for a search run: carried
// regardless of the no-multi-user-coordination non-goal, since that excludes
// functionality, not instrumentation. Register against a real
// *prometheus.Registry to expose these, or pass nil to NewMetrics to collect
// without exporting anywhere.
type Metrics struct {
	Restarts       prometheus.Counter
	Iterations     prometheus.Counter
	BestCost       prometheus.Gauge
	SearchDuration prometheus.Histogram
}

// NewMetrics builds the counters/gauges for one engine. If reg is non-nil,
// they are registered against it so /metrics (or a one-shot text dump) can
// expose them; if reg is nil the collectors still work, just unexported.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_search_restarts_total",
			Help: "Number of restarts attempted by the search engine.",
		}),
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_search_iterations_total",
			Help: "Number of min-conflicts repair iterations run.",
		}),
		BestCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_search_best_cost",
			Help: "Total cost of the best assignment kept so far.",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_search_duration_seconds",
			Help:    "Wall-clock duration of a full search run.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Restarts, m.Iterations, m.BestCost, m.SearchDuration)
	}
	return m
}
