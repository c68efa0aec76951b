package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vote results recorded by VoteMetrics.
const (
	VoteResultCast         = "cast"
	VoteResultRoundClosed  = "round_closed"
	VoteResultAlreadyVoted = "already_voted"
	VoteResultInvalidSide  = "invalid_side"
	VoteResultError        = "error"
)

// VoteMetrics holds Prometheus metrics for vote casting.
type VoteMetrics struct {
	VotesProcessed     *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	VotesBySide        *prometheus.CounterVec
}

// NewVoteMetrics creates and registers vote metrics on the given registry.
func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	m := &VoteMetrics{
		VotesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_processed_total",
			Help:      "Total number of vote attempts, by result.",
		}, []string{"result"}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "votes_processing_duration_seconds",
			Help:      "Duration of vote processing (load, cast, save) in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		VotesBySide: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_by_side_total",
			Help:      "Total number of accepted votes, by side.",
		}, []string{"side"}),
	}

	reg.MustRegister(m.VotesProcessed, m.ProcessingDuration, m.VotesBySide)
	return m
}
