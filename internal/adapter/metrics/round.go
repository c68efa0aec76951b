package metrics

import "github.com/prometheus/client_golang/prometheus"

// RoundMetrics tracks the render loop, settlement and the health of the state store.
type RoundMetrics struct {
	Ticks          prometheus.Counter
	RenderErrors   prometheus.Counter
	RenderDuration prometheus.Histogram
	Settlements    *prometheus.CounterVec
	StoreDegraded  prometheus.Gauge
}

// NewRoundMetrics creates and registers round metrics on the given registry.
func NewRoundMetrics(reg prometheus.Registerer) *RoundMetrics {
	m := &RoundMetrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "ticks_total",
			Help:      "Total number of render ticks.",
		}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "render_errors_total",
			Help:      "Total number of render passes that failed.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "render_duration_seconds",
			Help:      "Duration of a render pass in seconds.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		Settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "settlements_total",
			Help:      "Number of times the round was settled, by outcome. At most one per season and device.",
		}, []string{"outcome"}),
		StoreDegraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "degraded",
			Help:      "1 when the session fell back to in-memory state, 0 otherwise.",
		}),
	}

	reg.MustRegister(m.Ticks, m.RenderErrors, m.RenderDuration, m.Settlements, m.StoreDegraded)
	return m
}
