// internal/workers/analysis/detailed-readiness-analysis/handler.go
package detailedreadinessanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rental-readiness-workers/internal/common/camunda"
	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/common/metrics"
	"rental-readiness-workers/internal/common/observability"
	"rental-readiness-workers/internal/models"
	"rental-readiness-workers/internal/readiness"
	"rental-readiness-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "detailed-readiness-analysis"

	stepCount = 3
)

type AssessmentStore interface {
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	Latest(ctx context.Context, userID string) (*models.Assessment, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Assessment, error)
	SaveGapAnalysis(ctx context.Context, id string, gaps map[string]string, recs []models.Recommendation) error
}

type ProfileStore interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
	Contact(ctx context.Context, userID string) (*models.UserProfile, error)
}

type TaskStore interface {
	Improvement(ctx context.Context, scope, userID, assessmentID string) (int, error)
}

type Handler struct {
	config      *Config
	assessments AssessmentStore
	profiles    ProfileStore
	tasks       TaskStore
	rents       repository.RentSource
	now         func() time.Time
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, assessments AssessmentStore, profiles ProfileStore, tasks TaskStore, rents repository.RentSource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		assessments: assessments,
		profiles:    profiles,
		tasks:       tasks,
		rents:       rents,
		now:         time.Now,
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

// Execute builds the premium dashboard for the selected assessment, or the
// user's latest one. The regenerated gap analysis is written back.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.NewInvalidInputError("userId is required")
	}

	premium, err := h.profiles.IsPremium(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !premium {
		return nil, errors.NewPremiumRequiredError("detailed readiness analysis")
	}

	a, err := h.selectAssessment(ctx, userID, strings.TrimSpace(input.AssessmentID))
	if err != nil {
		return nil, err
	}
	if a == nil {
		return emptyOutput(), nil
	}

	history, err := h.assessments.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	base := a.BaseScore()
	final, err := h.finalScore(ctx, userID, a)
	if err != nil {
		return nil, err
	}

	scorePrev := base
	for _, other := range history {
		if other.ID != a.ID {
			scorePrev = other.BaseScore()
			break
		}
	}

	rents := h.rents.Rents(ctx)
	categories := readiness.NewCategoryScorer(rents).Score(a)
	financials := readiness.WeeklyFinancials(a, rents)

	analysis := readiness.AnalyzeGaps(a, readiness.ScoreMap(categories))
	if err := h.assessments.SaveGapAnalysis(ctx, a.ID, analysis.Gaps, analysis.Recommendations); err != nil {
		return nil, err
	}

	previous, err := h.previousAssessments(ctx, userID, history)
	if err != nil {
		return nil, err
	}

	metrics.ReadinessScores.WithLabelValues("final").Observe(float64(final))
	observability.RecordScore(ctx, "final", final)

	h.logger.Info("readiness analysis built", map[string]interface{}{
		"assessmentId":    a.ID,
		"baseScore":       base,
		"finalScore":      final,
		"gaps":            len(analysis.Gaps),
		"recommendations": len(analysis.Recommendations),
	})

	createdAt := a.CreatedAt
	return &Output{
		AssessmentID:        a.ID,
		Score:               final,
		ScorePrev:           scorePrev,
		RiskLevel:           a.RiskLevel,
		LastAssessment:      &createdAt,
		UserName:            h.userName(ctx, userID),
		Postcode:            a.Postcode,
		Suburb:              a.Suburb,
		IncomeWeekly:        financials.IncomeWeekly,
		TargetRentWeekly:    financials.TargetRentWeekly,
		AvgRentWeekly:       financials.AvgRentWeekly,
		Breakdown:           readiness.Breakdown(categories),
		Categories:          categories,
		Gaps:                analysis.Gaps,
		Recommendations:     analysis.Recommendations,
		PreviousAssessments: previous,
		Steps:               readiness.ImprovementSteps(analysis.Recommendations, stepCount),
		Activity: []Activity{{
			Icon:        "🧾",
			Title:       "Assessment completed",
			Description: "Your readiness score and gap analysis were calculated.",
			When:        "Recently",
		}},
		IsPremium: true,
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

func (h *Handler) finalScore(ctx context.Context, userID string, a *models.Assessment) (int, error) {
	improvement, err := h.tasks.Improvement(ctx, h.config.ImprovementScope, userID, a.ID)
	if err != nil {
		return 0, err
	}
	return readiness.FinalScore(a.BaseScore(), improvement, true), nil
}

func (h *Handler) previousAssessments(ctx context.Context, userID string, history []*models.Assessment) ([]PreviousAssessment, error) {
	now := h.now()
	out := make([]PreviousAssessment, 0, len(history))
	for _, item := range history {
		score, err := h.finalScore(ctx, userID, item)
		if err != nil {
			return nil, err
		}
		out = append(out, PreviousAssessment{
			ID:        item.ID,
			Score:     score,
			RiskLevel: item.RiskLevel,
			DaysAgo:   int(now.Sub(item.CreatedAt).Hours() / 24),
			CreatedAt: item.CreatedAt.Format(time.DateOnly),
		})
	}
	return out, nil
}

// userName falls back to the email, and to nothing when the profile cannot be read.
func (h *Handler) userName(ctx context.Context, userID string) string {
	profile, err := h.profiles.Contact(ctx, userID)
	if err != nil {
		h.logger.Warn("profile lookup failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return ""
	}
	if profile.FirstName != "" {
		return profile.FirstName
	}
	return profile.Email
}

func emptyOutput() *Output {
	return &Output{
		Breakdown:           []readiness.BreakdownEntry{},
		Categories:          []readiness.CategoryScore{},
		Gaps:                map[string]string{},
		Recommendations:     []models.Recommendation{},
		PreviousAssessments: []PreviousAssessment{},
		Steps:               []readiness.Step{},
		Activity:            []Activity{},
		IsPremium:           true,
	}
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
