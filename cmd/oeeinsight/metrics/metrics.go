package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CalculationsTotal counts persisted OEE calculations by trigger type
	CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oeeinsight_calculations_total",
		Help: "Number of persisted OEE calculations, labelled by calculation type",
	}, []string{"calculation_type"})

	// TrendBatchRuns counts scheduled trend batch executions
	TrendBatchRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oeeinsight_trend_batch_runs_total",
		Help: "Number of scheduled trend batch executions",
	})

	// TrendBatchFailures counts per-equipment failures inside the trend batch
	TrendBatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oeeinsight_trend_batch_failures_total",
		Help: "Number of equipment units whose scheduled trend computation failed",
	})

	// TrendBatchDuration observes how long one full trend batch takes
	TrendBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oeeinsight_trend_batch_duration_seconds",
		Help:    "Duration of one full scheduled trend batch",
		Buckets: prometheus.DefBuckets,
	})
)
