// internal/workers/communication/send-readiness-summary/handler.go
package sendreadinesssummary

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
	TaskType = "send-readiness-summary"
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

type ContactDirectory interface {
	Contact(ctx context.Context, userID string) (*models.UserProfile, error)
}

// Sender delivers a rendered summary.
type Sender interface {
	Send(ctx context.Context, contact *models.UserProfile, summary Summary) (*Output, error)
}

type Handler struct {
	config      *Config
	assessments AssessmentStore
	artifacts   ArtifactStore
	tasks       TaskStore
	contacts    ContactDirectory
	rents       repository.RentSource
	sender      Sender
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(
	config *Config,
	assessments AssessmentStore,
	artifacts ArtifactStore,
	tasks TaskStore,
	contacts ContactDirectory,
	rents repository.RentSource,
	sender Sender,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		assessments: assessments,
		artifacts:   artifacts,
		tasks:       tasks,
		contacts:    contacts,
		rents:       rents,
		sender:      sender,
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

// Execute sends the user their current final score for the given assessment,
// or their latest one.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.NewInvalidInputError("userId is required")
	}

	contact, err := h.contacts.Contact(ctx, userID)
	if err != nil {
		return nil, err
	}

	a, err := h.selectAssessment(ctx, userID, strings.TrimSpace(input.AssessmentID))
	if err != nil {
		return nil, err
	}

	summary := Summary{FirstName: contact.FirstName}
	if a != nil {
		if summary, err = h.summarize(ctx, contact, a); err != nil {
			return nil, err
		}
	}

	out, err := h.sender.Send(ctx, contact, summary)
	if err != nil {
		h.logger.Error("readiness summary not delivered", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return nil, err
	}
	if a != nil {
		out.AssessmentID = a.ID
	}
	return out, nil
}

func (h *Handler) summarize(ctx context.Context, contact *models.UserProfile, a *models.Assessment) (Summary, error) {
	present, err := h.artifacts.Present(ctx, contact.UserID, a.ID, readiness.TrackedArtifacts()...)
	if err != nil {
		return Summary{}, err
	}
	completed, err := h.tasks.CompletedKeys(ctx, contact.UserID, a.ID)
	if err != nil {
		return Summary{}, err
	}
	improvement, err := h.tasks.Improvement(ctx, h.config.ImprovementScope, contact.UserID, a.ID)
	if err != nil {
		return Summary{}, err
	}

	open := readiness.GenerateTasks(readiness.TaskContext{
		Artifacts:      present,
		CategoryScores: readiness.ScoreMap(readiness.NewCategoryScorer(h.rents.Rents(ctx)).Score(a)),
		Completed:      completed,
	})

	final := readiness.FinalScore(a.BaseScore(), improvement, contact.IsPremium)
	return Summary{
		FirstName:   contact.FirstName,
		Score:       final,
		RiskLevel:   readiness.RiskFromScore(final),
		OpenActions: len(open),
		HasScore:    true,
	}, nil
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
