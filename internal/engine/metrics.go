package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poverty_runs_total",
		Help: "Completed comparison runs by status.",
	}, []string{"status"})

	householdsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poverty_households_scored_total",
		Help: "Households scored across all runs.",
	})

	classificationFlips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poverty_classification_flips_total",
		Help: "Households whose poverty classification flipped between weight regimes.",
	})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poverty_run_duration_seconds",
		Help:    "Wall-clock duration of comparison runs.",
		Buckets: prometheus.DefBuckets,
	})
)
