// Package metrics holds the Prometheus collectors for indicator evaluation.
// Collectors are registered on a caller-supplied registry so tests and
// embedding programs never touch the global one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #region metrics
const namespace = "stix"

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	// Verdicts counts top-level indicator verdicts. Labels: verdict.
	Verdicts *prometheus.CounterVec

	// Observables counts leaf evaluations. Labels: kind, state.
	Observables *prometheus.CounterVec

	// MemoHits counts observable results served from the per-indicator cache.
	MemoHits prometheus.Counter

	// ArtifactsCreated counts interesting items written to the case.
	ArtifactsCreated prometheus.Counter

	// CapHits counts indicators whose artifacts were truncated by the cap.
	CapHits prometheus.Counter

	// IndicatorSeconds measures per-indicator evaluation time.
	IndicatorSeconds prometheus.Histogram
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indicator_verdicts_total",
			Help:      "Indicator verdicts by tri-state outcome",
		}, []string{"verdict"}),
		Observables: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observable_evaluations_total",
			Help:      "Leaf observable evaluations by object kind and outcome",
		}, []string{"kind", "state"}),
		MemoHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observable_memo_hits_total",
			Help:      "Observable results reused within one indicator",
		}),
		ArtifactsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_created_total",
			Help:      "Interesting-item artifacts created for true indicators",
		}),
		CapHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_cap_hits_total",
			Help:      "Indicators whose artifact creation stopped at the cap",
		}),
		IndicatorSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "indicator_evaluation_seconds",
			Help:      "Time to evaluate one indicator",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),
	}
}
// #endregion metrics

// #region record
func (m *Metrics) Verdict(verdict string) {
	if m == nil {
		return
	}
	m.Verdicts.WithLabelValues(verdict).Inc()
}

func (m *Metrics) Observable(kind, state string) {
	if m == nil {
		return
	}
	m.Observables.WithLabelValues(kind, state).Inc()
}

func (m *Metrics) MemoHit() {
	if m == nil {
		return
	}
	m.MemoHits.Inc()
}

func (m *Metrics) Artifacts(created int, capped bool) {
	if m == nil {
		return
	}
	m.ArtifactsCreated.Add(float64(created))
	if capped {
		m.CapHits.Inc()
	}
}

func (m *Metrics) IndicatorDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.IndicatorSeconds.Observe(d.Seconds())
}
// #endregion record
