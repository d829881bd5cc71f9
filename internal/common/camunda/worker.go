package camunda

import (
	"context"
	"sync"
	"time"

	"rental-readiness-workers/internal/common/config"
	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/common/metrics"
	"rental-readiness-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// JobHandler is implemented by every task type handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Workers opens and tracks the job workers of one process.
type Workers struct {
	client  zbc.Client
	logger  logger.Logger
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled. It reports
// whether a worker was opened.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler JobHandler) bool {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.workers[taskType]; exists {
		w.logger.Warn("worker already started", map[string]interface{}{"taskType": taskType})
		return false
	}

	w.workers[taskType] = w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Name(taskType + "-worker").
		Open()

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// Running lists the task types with an open worker.
func (w *Workers) Running() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.workers))
	for taskType := range w.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops every worker and waits for in-flight jobs.
func (w *Workers) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for taskType, jw := range w.workers {
		w.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		jw.Close()
		jw.AwaitClose()
		delete(w.workers, taskType)
	}
}

// JobTracker records metrics and a span for one job.
type JobTracker struct {
	taskType string
	start    time.Time
	span     trace.Span
}

// TrackJob marks a job active and opens its span. Done must be called once.
func TrackJob(ctx context.Context, taskType string, job entities.Job) (context.Context, *JobTracker) {
	metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
	ctx, span := observability.StartJobSpan(ctx, taskType, job.Key, job.ProcessInstanceKey)
	return ctx, &JobTracker{taskType: taskType, start: time.Now(), span: span}
}

// Done records the outcome. A nil err counts as completed.
func (t *JobTracker) Done(ctx context.Context, err error) {
	elapsed := time.Since(t.start)
	status := "completed"

	metrics.WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	metrics.WorkerJobDuration.WithLabelValues(t.taskType).Observe(elapsed.Seconds())

	if err != nil {
		status = "failed"
		code := string(errors.Normalize(err).Code)
		metrics.WorkerJobsFailed.WithLabelValues(t.taskType, code).Inc()
		t.span.RecordError(err)
		t.span.SetStatus(codes.Error, code)
	} else {
		metrics.WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
		t.span.SetStatus(codes.Ok, "")
	}

	observability.RecordJobProcessed(ctx, t.taskType, status)
	observability.RecordJobDuration(ctx, t.taskType, elapsed, status)
	t.span.End()
}
