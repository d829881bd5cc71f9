// internal/workers/action-plan/build-document-checklist/handler.go
package builddocumentchecklist

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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "build-document-checklist"
)

type AssessmentStore interface {
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
}

type ArtifactStore interface {
	FirstOfEach(ctx context.Context, userID, assessmentID string, kinds ...string) (map[string]*models.Artifact, error)
}

type Handler struct {
	config      *Config
	assessments AssessmentStore
	artifacts   ArtifactStore
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, assessments AssessmentStore, artifacts ArtifactStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		assessments: assessments,
		artifacts:   artifacts,
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

// Execute reports which artifacts have been uploaded for the assessment.
// Requesters who do not own the assessment get an empty checklist.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	assessmentID := strings.TrimSpace(input.AssessmentID)
	if userID == "" || assessmentID == "" {
		return nil, errors.NewInvalidInputError("userId and assessmentId are required")
	}

	a, err := h.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if !a.OwnedBy(userID) {
		h.logger.Warn("checklist requested for assessment owned by another user", map[string]interface{}{
			"assessmentId": assessmentID,
			"userId":       userID,
		})
		return &Output{Checklist: readiness.EmptyChecklist()}, nil
	}

	first, err := h.artifacts.FirstOfEach(ctx, userID, a.ID, readiness.ChecklistTypes()...)
	if err != nil {
		return nil, err
	}
	checklist := readiness.BuildChecklist(first)

	h.logger.Debug("checklist built", map[string]interface{}{
		"assessmentId": a.ID,
		"completed":    checklist.Completed,
		"total":        checklist.Total,
	})
	return &Output{Checklist: checklist}, nil
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
