// internal/workers/analysis/calculate-category-scores/handler.go
package calculatecategoryscores

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
	"rental-readiness-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-category-scores"
)

type AssessmentStore interface {
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Assessment, error)
	ListBySession(ctx context.Context, sessionKey string) ([]*models.Assessment, error)
}

type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

type Handler struct {
	config      *Config
	assessments AssessmentStore
	profiles    PremiumChecker
	rents       repository.RentSource
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, assessments AssessmentStore, profiles PremiumChecker, rents repository.RentSource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		assessments: assessments,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.SessionKey = strings.TrimSpace(input.SessionKey)
	input.AssessmentID = strings.TrimSpace(input.AssessmentID)

	if input.AssessmentID != "" {
		return h.breakdown(ctx, input)
	}
	return h.list(ctx, input)
}

func (h *Handler) breakdown(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, errors.NewInvalidInputError("userId is required for a category breakdown")
	}

	premium, err := h.profiles.IsPremium(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !premium {
		return nil, errors.NewPremiumRequiredError("category breakdown")
	}

	a, err := h.assessments.GetByID(ctx, input.AssessmentID)
	if err != nil {
		return nil, err
	}
	if !a.OwnedBy(input.UserID) {
		return nil, errors.NewAssessmentForbiddenError(a.ID, input.UserID)
	}

	categories := readiness.NewCategoryScorer(h.rents.Rents(ctx)).Score(a)
	for _, c := range categories {
		metrics.ReadinessScores.WithLabelValues("category:" + c.Category).Observe(float64(c.Score))
	}

	h.logger.Info("category breakdown calculated", map[string]interface{}{
		"assessmentId": a.ID,
		"scores":       readiness.ScoreMap(categories),
	})

	createdAt := a.CreatedAt
	return &Output{
		AssessmentID:   a.ID,
		CreatedAt:      &createdAt,
		Categories:     categories,
		ReadinessScore: a.ReadinessScore,
		RiskLevel:      a.RiskLevel,
	}, nil
}

func (h *Handler) list(ctx context.Context, input *Input) (*Output, error) {
	var (
		rows []*models.Assessment
		err  error
	)
	switch {
	case input.UserID != "":
		rows, err = h.assessments.ListByUser(ctx, input.UserID, 0)
	case input.SessionKey != "":
		rows, err = h.assessments.ListBySession(ctx, input.SessionKey)
	default:
		return nil, errors.NewInvalidInputError("userId or sessionKey is required")
	}
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(rows))
	for _, a := range rows {
		name := a.FullName
		if name == "" {
			name = "Anonymous"
		}
		summaries = append(summaries, Summary{
			ID:                a.ID,
			FullName:          name,
			CreatedAt:         a.CreatedAt,
			MonthlyRentBudget: a.MonthlyRentBudget,
			Postcode:          a.Postcode,
			Score:             a.BaseScore(),
			RiskLevel:         a.RiskLevel,
		})
	}

	count := len(summaries)
	return &Output{Assessments: summaries, Count: &count}, nil
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
