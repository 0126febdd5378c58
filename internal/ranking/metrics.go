package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricCandidatesScoredTotal = "prospect_candidates_scored_total"
	MetricRankDuration          = "prospect_rank_duration_seconds"
	MetricRankIncompleteTotal   = "prospect_rank_incomplete_total"
)

// Outcome labels for scored candidates.
const (
	OutcomeScored     = "scored"
	OutcomeReused     = "reused"
	OutcomeUnscorable = "unscorable"
	OutcomeSkipped    = "skipped"
)

// Metrics contains Prometheus metrics for ranking operations.
// All methods are safe on a nil receiver, which disables collection.
type Metrics struct {
	candidatesScored *prometheus.CounterVec
	rankDuration     prometheus.Histogram
	rankIncomplete   prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		candidatesScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCandidatesScoredTotal,
				Help: "Total number of candidates processed by ranking, by outcome",
			},
			[]string{"outcome"},
		),
		rankDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRankDuration,
				Help:    "Histogram of rank call duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
		),
		rankIncomplete: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRankIncompleteTotal,
				Help: "Total number of rank calls cancelled before every candidate was scored",
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.candidatesScored,
		m.rankDuration,
		m.rankIncomplete,
	}
}

// AddCandidates adds n candidates with the given outcome.
func (m *Metrics) AddCandidates(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.candidatesScored.WithLabelValues(outcome).Add(float64(n))
}

// ObserveRankDuration records a rank call duration sample.
func (m *Metrics) ObserveRankDuration(seconds float64) {
	if m == nil {
		return
	}
	m.rankDuration.Observe(seconds)
}

// IncIncomplete increments the incomplete rank counter.
func (m *Metrics) IncIncomplete() {
	if m == nil {
		return
	}
	m.rankIncomplete.Inc()
}
