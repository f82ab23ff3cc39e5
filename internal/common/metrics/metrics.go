// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolCallsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_completed_total",
			Help: "Total number of tool jobs completed",
		},
		[]string{"task_type"},
	)

	ToolCallsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_failed_total",
			Help: "Total number of tool jobs failed",
		},
		[]string{"task_type", "error_code"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tool_call_duration_seconds",
			Help:    "Duration of tool job processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)

	ToolCallsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tool_calls_active",
			Help: "Number of tool jobs currently being processed",
		},
		[]string{"task_type"},
	)

	ConcertSearchResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "concert_search_results",
			Help:    "Number of concerts returned per recommendation search",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		},
		[]string{"mode"},
	)

	NotFoundResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_not_found_results_total",
			Help: "Tool calls that completed with a not-found sentinel result",
		},
		[]string{"task_type"},
	)
)
