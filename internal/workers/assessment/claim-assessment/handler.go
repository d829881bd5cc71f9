// internal/workers/assessment/claim-assessment/handler.go
package claimassessment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rental-readiness-workers/internal/common/camunda"
	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "claim-assessment"
)

type AssessmentStore interface {
	Claim(ctx context.Context, sessionKey, userID string) (string, error)
}

type Handler struct {
	config      *Config
	assessments AssessmentStore
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, assessments AssessmentStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		assessments: assessments,
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

// Execute attaches the newest assessment of the session to the user.
// A session whose newest assessment is already owned yields Claimed=false.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	sessionKey := strings.TrimSpace(input.SessionKey)
	userID := strings.TrimSpace(input.UserID)
	if sessionKey == "" || userID == "" {
		return nil, errors.NewInvalidInputError("sessionKey and userId are required")
	}

	id, err := h.assessments.Claim(ctx, sessionKey, userID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		h.logger.Debug("nothing to claim", map[string]interface{}{"userId": userID})
		return &Output{Claimed: false}, nil
	}

	h.logger.Info("assessment claimed", map[string]interface{}{
		"assessmentId": id,
		"userId":       userID,
	})
	return &Output{Claimed: true, AssessmentID: id}, nil
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
