package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScoringMetrics holds Prometheus metrics for the scoring pipeline.
type ScoringMetrics struct {
	ScoresTotal       *prometheus.CounterVec
	CombinedScore     prometheus.Histogram
	Confidence        prometheus.Histogram
	InferenceDuration *prometheus.HistogramVec
	InferenceErrors   *prometheus.CounterVec
}

func NewScoringMetrics(reg prometheus.Registerer) *ScoringMetrics {
	m := &ScoringMetrics{
		ScoresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_total",
			Help:      "Total number of computed scores, by whether the emoji had a prior.",
		}, []string{"prior"}),
		CombinedScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "combined_score",
			Help:      "Distribution of the final 0-100 score.",
			Buckets:   prometheus.LinearBuckets(10, 10, 9),
		}),
		Confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "text_confidence",
			Help:      "Distribution of the entropy-based text confidence.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 9),
		}),
		InferenceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "inference",
			Name:      "duration_seconds",
			Help:      "Duration of emotion inference in seconds, by result.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"result"}),
		InferenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inference",
			Name:      "errors_total",
			Help:      "Total number of failed inferences, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.ScoresTotal, m.CombinedScore, m.Confidence, m.InferenceDuration, m.InferenceErrors)
	return m
}

// ObserveInference records one inference call. kind is empty on success.
func (m *ScoringMetrics) ObserveInference(d time.Duration, kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		m.InferenceDuration.WithLabelValues("ok").Observe(d.Seconds())
		return
	}
	m.InferenceDuration.WithLabelValues("error").Observe(d.Seconds())
	m.InferenceErrors.WithLabelValues(kind).Inc()
}

func (m *ScoringMetrics) ObserveScore(combined100, confidence float64, knownPrior bool) {
	if m == nil {
		return
	}
	prior := "unknown"
	if knownPrior {
		prior = "known"
	}
	m.ScoresTotal.WithLabelValues(prior).Inc()
	m.CombinedScore.Observe(combined100)
	m.Confidence.Observe(confidence)
}
