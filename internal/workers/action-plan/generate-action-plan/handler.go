// internal/workers/action-plan/generate-action-plan/handler.go
package generateactionplan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rental-readiness-workers/internal/common/camunda"
	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/models"
	"rental-readiness-workers/internal/readiness"
	"rental-readiness-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-action-plan"
)

type AssessmentStore interface {
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	Latest(ctx context.Context, userID string) (*models.Assessment, error)
}

type ArtifactStore interface {
	Present(ctx context.Context, userID, assessmentID string, kinds ...string) (map[string]bool, error)
}

type TaskStore interface {
	CompletedKeys(ctx context.Context, userID, assessmentID string) (map[string]bool, error)
	Improvement(ctx context.Context, scope, userID, assessmentID string) (int, error)
}

type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

type Handler struct {
	config      *Config
	assessments AssessmentStore
	artifacts   ArtifactStore
	tasks       TaskStore
	profiles    PremiumChecker
	rents       repository.RentSource
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(
	config *Config,
	assessments AssessmentStore,
	artifacts ArtifactStore,
	tasks TaskStore,
	profiles PremiumChecker,
	rents repository.RentSource,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		assessments: assessments,
		artifacts:   artifacts,
		tasks:       tasks,
		profiles:    profiles,
		rents:       rents,
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

// Execute lists the tasks still open for the assessment (the user's latest
// when none is given) along with its base, improvement and final score.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.NewInvalidInputError("userId is required")
	}

	premium, err := h.profiles.IsPremium(ctx, userID)
	if err != nil {
		return nil, err
	}

	a, err := h.selectAssessment(ctx, userID, strings.TrimSpace(input.AssessmentID))
	if err != nil {
		return nil, err
	}
	if a == nil {
		return &Output{ActionPlan: readiness.EmptyActionPlan(), IsPremium: premium}, nil
	}

	present, err := h.artifacts.Present(ctx, userID, a.ID, readiness.TrackedArtifacts()...)
	if err != nil {
		return nil, err
	}
	completed, err := h.tasks.CompletedKeys(ctx, userID, a.ID)
	if err != nil {
		return nil, err
	}
	improvement, err := h.tasks.Improvement(ctx, h.config.ImprovementScope, userID, a.ID)
	if err != nil {
		return nil, err
	}

	categories := readiness.NewCategoryScorer(h.rents.Rents(ctx)).Score(a)
	tasks := readiness.GenerateTasks(readiness.TaskContext{
		Artifacts:      present,
		CategoryScores: readiness.ScoreMap(categories),
		Completed:      completed,
	})

	plan := readiness.ActionPlan{
		AssessmentID:     a.ID,
		Tasks:            tasks,
		BaseScore:        a.BaseScore(),
		ImprovementScore: improvement,
		FinalScore:       readiness.FinalScore(a.BaseScore(), improvement, premium),
	}

	h.logger.Info("action plan generated", map[string]interface{}{
		"assessmentId": a.ID,
		"openTasks":    len(tasks),
		"completed":    len(completed),
		"finalScore":   plan.FinalScore,
	})

	return &Output{ActionPlan: plan, IsPremium: premium}, nil
}

func (h *Handler) selectAssessment(ctx context.Context, userID, assessmentID string) (*models.Assessment, error) {
	if assessmentID == "" {
		return h.assessments.Latest(ctx, userID)
	}
	a, err := h.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if !a.OwnedBy(userID) {
		return nil, errors.NewAssessmentForbiddenError(assessmentID, userID)
	}
	return a, nil
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
