package submitassessment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rental-readiness-workers/internal/common/camunda"
	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/common/metrics"
	"rental-readiness-workers/internal/common/observability"
	"rental-readiness-workers/internal/common/validation"
	"rental-readiness-workers/internal/models"
	"rental-readiness-workers/internal/readiness"
	"rental-readiness-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "submit-assessment"
)

type AssessmentStore interface {
	Create(ctx context.Context, a *models.Assessment) error
}

type Handler struct {
	config      *Config
	assessments AssessmentStore
	rents       repository.RentSource
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, assessments AssessmentStore, rents repository.RentSource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		assessments: assessments,
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

	output, err := h.process(ctx, job)
	if err != nil {
		tracker.Done(ctx, err)
		h.errors.HandleJobError(context.Background(), client, job, err)
		return
	}

	tracker.Done(ctx, h.completeJob(client, job, output))
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
	}
	if result := validation.ValidateInput(variables, GetInputSchema()); !result.Valid {
		return nil, errors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return h.Execute(ctx, &input)
}

// Execute sanitizes the questionnaire, runs the base scorer and stores a new assessment.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.SessionKey) == "" {
		return nil, errors.NewInvalidInputError("sessionKey is required")
	}

	a := sanitize(input)
	result := readiness.NewBaseScorer(h.rents.Rents(ctx)).Score(a)
	result.Apply(a)

	if err := h.assessments.Create(ctx, a); err != nil {
		return nil, err
	}

	metrics.ReadinessScores.WithLabelValues("base").Observe(float64(result.Score))
	observability.RecordScore(ctx, "base", result.Score)

	h.logger.Info("assessment scored", map[string]interface{}{
		"assessmentId": a.ID,
		"score":        result.Score,
		"riskLevel":    result.RiskLevel,
		"weaknesses":   len(result.Weaknesses),
	})

	return &Output{
		AssessmentID:   a.ID,
		ReadinessScore: result.Score,
		RiskLevel:      result.RiskLevel,
		Strengths:      result.Strengths,
		Weaknesses:     result.Weaknesses,
		CreatedAt:      a.CreatedAt,
	}, nil
}

func sanitize(in *Input) *models.Assessment {
	a := &models.Assessment{
		SessionKey:             strings.TrimSpace(in.SessionKey),
		FullName:               strings.TrimSpace(in.FullName),
		Postcode:               strings.TrimSpace(in.Postcode),
		Suburb:                 strings.TrimSpace(in.Suburb),
		City:                   strings.TrimSpace(in.City),
		Lat:                    readiness.ParseOptionalAmount(in.Lat),
		Lon:                    readiness.ParseOptionalAmount(in.Lon),
		MonthlyRentBudget:      readiness.ParseAmount(in.MonthlyRentBudget),
		HouseholdIncome:        readiness.ParseAmount(in.HouseholdIncome),
		HouseholdIncomePeriod:  normalizeEnum(in.HouseholdIncomePeriod),
		IndividualIncome:       readiness.ParseAmount(in.IndividualIncome),
		IndividualIncomePeriod: normalizeEnum(in.IndividualIncomePeriod),
		EmploymentStatus:       normalizeEnum(in.EmploymentStatus),
		TimeInRole:             strings.TrimSpace(in.TimeInRole),
		RentalHistory:          normalizeEnum(in.RentalHistory),
		ProofOfIncome:          normalizeEnum(in.ProofOfIncome),
		MovingWithAdults:       readiness.ParseCount(in.MovingWithAdults),
		MovingWithChildren:     readiness.ParseCount(in.MovingWithChildren),
		MovingWithPets:         readiness.ParseCount(in.MovingWithPets),
		ContextIssues:          strings.TrimSpace(in.ContextIssues),
		Documents:              []string{},
	}
	if userID := strings.TrimSpace(in.UserID); userID != "" {
		a.UserID = &userID
	}
	for _, doc := range in.Documents {
		if doc = strings.TrimSpace(doc); doc != "" {
			a.Documents = append(a.Documents, doc)
		}
	}
	return a
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
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
