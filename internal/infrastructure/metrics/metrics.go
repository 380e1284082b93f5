// Package metrics provides Prometheus metrics for the action-item pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InferenceCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_actions_inference_calls_total",
			Help: "Total number of inference calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meeting_actions_inference_duration_seconds",
			Help:    "Inference call duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)
	RecommendationsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meeting_actions_recommendations_generated_total",
			Help: "Total number of recommendations persisted",
		},
	)
	RecommendationsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meeting_actions_recommendations_skipped_total",
			Help: "Total number of tasks skipped because no recommendation was warranted",
		},
	)
	TasksExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meeting_actions_tasks_extracted_total",
			Help: "Total number of tasks created by the extractor",
		},
	)
	ScannerSweeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meeting_actions_scanner_sweeps_total",
			Help: "Total number of retry scanner sweeps",
		},
	)
	ScannerRepaired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meeting_actions_scanner_repaired_total",
			Help: "Total number of tasks repaired by the retry scanner",
		},
	)
)

func RecordInference(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	InferenceCalls.WithLabelValues(operation, outcome).Inc()
	InferenceDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordSweep(repaired int) {
	ScannerSweeps.Inc()
	ScannerRepaired.Add(float64(repaired))
}
