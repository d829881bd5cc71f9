package metrics

import (
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

	// ReadinessScores observes every score handed back to a caller.
	// kind is base, final or category:<name>.
	ReadinessScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "readiness_score",
			Help:    "Distribution of computed readiness scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"kind"},
	)

	TasksAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_tasks_awarded_total",
			Help: "Action plan tasks newly completed, by task key",
		},
		[]string{"task_key"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_cache_lookups_total",
			Help: "Redis cache lookups by cache and result (hit, miss, error)",
		},
		[]string{"cache", "result"},
	)
)
