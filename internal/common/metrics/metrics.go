// internal/common/metrics/metrics.go
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scores_computed_total",
			Help: "Validation scores computed, by verdict",
		},
		[]string{"verdict"},
	)

	TriggerTasksCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trigger_tasks_created_total",
			Help: "Tasks created by workflow trigger rules",
		},
		[]string{"source", "priority"},
	)

	TriggerTasksSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trigger_tasks_skipped_total",
			Help: "Fired trigger rules suppressed as duplicates",
		},
		[]string{"source"},
	)

	HealthScoreCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_score_calculations_total",
			Help: "Health score requests by resolution mode (computed, redis, stored)",
		},
		[]string{"mode"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP function requests by function and status code",
		},
		[]string{"function", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP function latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"function"},
	)
)

// ObserveHTTP records one finished HTTP function request.
func ObserveHTTP(function string, status int, seconds float64) {
	HTTPRequests.WithLabelValues(function, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(function).Observe(seconds)
}
