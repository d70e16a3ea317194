package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the inference result cache.
type CacheMetrics struct {
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Evictions *prometheus.CounterVec
	Entries   prometheus.Gauge
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inference_cache",
			Name:      "hits_total",
			Help:      "Total number of inference cache hits.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inference_cache",
			Name:      "misses_total",
			Help:      "Total number of inference cache misses.",
		}),
		Evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inference_cache",
			Name:      "evictions_total",
			Help:      "Total number of evicted inference cache entries, by reason.",
		}, []string{"reason"}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "inference_cache",
			Name:      "entries",
			Help:      "Number of entries currently held in the inference cache.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Evictions, m.Entries)
	return m
}

func (m *CacheMetrics) Hit() {
	if m != nil {
		m.Hits.Inc()
	}
}

func (m *CacheMetrics) Miss() {
	if m != nil {
		m.Misses.Inc()
	}
}

// Evicted records n evictions for reason ("expired" or "capacity").
func (m *CacheMetrics) Evicted(reason string, n int) {
	if m != nil && n > 0 {
		m.Evictions.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *CacheMetrics) SetEntries(n int) {
	if m != nil {
		m.Entries.Set(float64(n))
	}
}
