// Package metrics exposes Prometheus counters for the insights pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "compassiq"

var (
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "insights_cache",
		Name:      "lookups_total",
		Help:      "Insights cache lookups by result (hit, shared_hit, miss).",
	}, []string{"result"})

	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "insights_cache",
		Name:      "evictions_total",
		Help:      "Entries evicted from the in-process insights cache.",
	})

	FeedbackLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feedback",
		Name:      "lookups_total",
		Help:      "Feedback retrievals by outcome (ok, empty, degraded).",
	}, []string{"outcome"})

	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "insights",
		Name:      "generations_total",
		Help:      "Calls to the insight generator by status.",
	}, []string{"status"})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "insights",
		Name:      "generation_duration_seconds",
		Help:      "Latency of the insight generator.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	})
)
