package metrics

import "github.com/prometheus/client_golang/prometheus"

// ViewerMetrics holds Prometheus metrics for live view streams.
type ViewerMetrics struct {
	ActiveViewers   prometheus.Gauge
	ViewsPublished  prometheus.Counter
	SlowDisconnects prometheus.Counter
}

// NewViewerMetrics creates and registers viewer metrics on the given registry.
func NewViewerMetrics(reg prometheus.Registerer) *ViewerMetrics {
	m := &ViewerMetrics{
		ActiveViewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_viewers",
			Help:      "Number of connected live view streams.",
		}),
		ViewsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "views_published_total",
			Help:      "Total number of views fanned out to viewers.",
		}),
		SlowDisconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "slow_disconnects_total",
			Help:      "Total number of viewers disconnected because they could not keep up.",
		}),
	}

	reg.MustRegister(m.ActiveViewers, m.ViewsPublished, m.SlowDisconnects)
	return m
}
