package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the enrichment pipeline.
//
// The dropped counter exists because zero-property records with confidence
// >= 80 produce no output record at all; without it they would be invisible.
type Metrics struct {
	RecordsProcessed *prometheus.CounterVec
	StepDuration     *prometheus.HistogramVec
	ExactMatches     prometheus.Counter
	AssistedMatches  prometheus.Counter
}

// New creates and registers all enrichment metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RecordsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_records_processed_total",
			Help: "Records classified, by outcome (accepted, rejected, dropped)",
		}, []string{"outcome"}),
		StepDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enricher_step_duration_seconds",
			Help:    "Duration of each resolution step",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
		ExactMatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enricher_exact_matches_total",
			Help: "Records resolved by the deterministic matcher",
		}),
		AssistedMatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enricher_assisted_matches_total",
			Help: "Records resolved by the disambiguation assistant",
		}),
	}
}

// RecordOutcome increments the processed counter for one outcome.
func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.RecordsProcessed.WithLabelValues(outcome).Inc()
}

// ObserveStep records one resolution step's duration.
func (m *Metrics) ObserveStep(step string, d time.Duration) {
	if m == nil {
		return
	}
	m.StepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// IncrementExactMatch counts a deterministic match.
func (m *Metrics) IncrementExactMatch() {
	if m == nil {
		return
	}
	m.ExactMatches.Inc()
}

// IncrementAssistedMatch counts an assistant-resolved match.
func (m *Metrics) IncrementAssistedMatch() {
	if m == nil {
		return
	}
	m.AssistedMatches.Inc()
}
