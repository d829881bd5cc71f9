// internal/workers/action-plan/complete-action-task/handler.go
package completeactiontask

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rental-readiness-workers/internal/common/camunda"
	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/common/metrics"
	"rental-readiness-workers/internal/models"
	"rental-readiness-workers/internal/readiness"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "complete-action-task"
)

type AssessmentStore interface {
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
}

type TaskStore interface {
	Complete(ctx context.Context, userID, assessmentID, taskKey string, points int) (bool, error)
	Improvement(ctx context.Context, scope, userID, assessmentID string) (int, error)
}

type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

type Handler struct {
	config      *Config
	assessments AssessmentStore
	tasks       TaskStore
	profiles    PremiumChecker
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, assessments AssessmentStore, tasks TaskStore, profiles PremiumChecker, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		assessments: assessments,
		tasks:       tasks,
		profiles:    profiles,
		errors:      errors.NewErrorHandler(log),
		logger:      log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, tracker := camunda.TrackJob(ctx, TaskType, job)

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		err = errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
		tracker.Done(ctx, err)
		h.errors.HandleJobError(context.Background(), client, job, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		tracker.Done(ctx, err)
		h.errors.HandleJobError(context.Background(), client, job, err)
		return
	}

	tracker.Done(ctx, h.completeJob(client, job, output))
}

// Execute marks the task complete for the assessment. Completing a task twice
// is not an error; the points are only awarded the first time.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	assessmentID := strings.TrimSpace(input.AssessmentID)
	if userID == "" || assessmentID == "" {
		return nil, errors.NewInvalidInputError("userId and assessmentId are required")
	}

	def, ok := readiness.LookupTask(strings.TrimSpace(input.TaskKey))
	if !ok {
		return nil, errors.NewUnknownTaskError(input.TaskKey)
	}

	a, err := h.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if !a.OwnedBy(userID) {
		return nil, errors.NewAssessmentForbiddenError(assessmentID, userID)
	}

	awarded, err := h.tasks.Complete(ctx, userID, a.ID, def.Key, def.Points)
	if err != nil {
		return nil, err
	}

	premium, err := h.profiles.IsPremium(ctx, userID)
	if err != nil {
		return nil, err
	}
	improvement, err := h.tasks.Improvement(ctx, h.config.ImprovementScope, userID, a.ID)
	if err != nil {
		return nil, err
	}

	out := &Output{
		TaskKey:          def.Key,
		Awarded:          awarded,
		ImprovementScore: improvement,
		FinalScore:       readiness.FinalScore(a.BaseScore(), improvement, premium),
	}
	if awarded {
		out.PointsAwarded = def.Points
		metrics.TasksAwarded.WithLabelValues(def.Key).Inc()
	}

	h.logger.Info("action task completed", map[string]interface{}{
		"assessmentId": a.ID,
		"taskKey":      def.Key,
		"awarded":      awarded,
		"finalScore":   out.FinalScore,
	})
	return out, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}
