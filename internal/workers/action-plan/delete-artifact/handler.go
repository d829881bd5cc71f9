// internal/workers/action-plan/delete-artifact/handler.go
package deleteartifact

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rental-readiness-workers/internal/common/camunda"
	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "delete-artifact"
)

type ArtifactStore interface {
	Delete(ctx context.Context, userID, kind, id string) (string, error)
}

type Handler struct {
	config    *Config
	artifacts ArtifactStore
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, artifacts ArtifactStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		artifacts: artifacts,
		errors:    errors.NewErrorHandler(log),
		logger:    log,
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

// Execute removes one of the user's artifacts. Completed tasks and their points
// are kept: completion is never undone.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	id := strings.TrimSpace(input.ArtifactID)
	kind := strings.ToLower(strings.TrimSpace(input.Type))
	if userID == "" || id == "" {
		return nil, errors.NewInvalidInputError("userId and artifactId are required")
	}
	if !models.IsArtifactType(kind) {
		return nil, errors.NewUnknownArtifactTypeError(input.Type)
	}

	fileRef, err := h.artifacts.Delete(ctx, userID, kind, id)
	if err != nil {
		return nil, err
	}

	h.logger.Info("artifact deleted", map[string]interface{}{
		"artifactId": id,
		"type":       kind,
		"hasFile":    fileRef != "",
	})
	return &Output{Deleted: true, ArtifactID: id, Type: kind, FileRef: fileRef}, nil
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
