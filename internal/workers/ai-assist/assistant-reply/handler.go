// internal/workers/ai-assist/assistant-reply/handler.go
package assistantreply

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rental-readiness-workers/internal/common/camunda"
	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/genai"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "assistant-reply"

	notAvailable = "N/A"
)

type AssessmentStore interface {
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	Latest(ctx context.Context, userID string) (*models.Assessment, error)
}

type TaskStore interface {
	CompletedKeys(ctx context.Context, userID, assessmentID string) (map[string]bool, error)
}

type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

type Handler struct {
	config      *Config
	assessments AssessmentStore
	tasks       TaskStore
	profiles    PremiumChecker
	generator   genai.TextGenerator
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(
	config *Config,
	assessments AssessmentStore,
	tasks TaskStore,
	profiles PremiumChecker,
	generator genai.TextGenerator,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		assessments: assessments,
		tasks:       tasks,
		profiles:    profiles,
		generator:   generator,
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

// Execute answers the user's message with guidance grounded in their
// assessment and the tasks they have already completed.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	message := strings.TrimSpace(input.Message)
	if userID == "" {
		return nil, errors.NewInvalidInputError("userId is required")
	}
	if message == "" {
		return nil, errors.NewInvalidInputError("message is required")
	}

	premium, err := h.profiles.IsPremium(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !premium {
		return nil, errors.NewPremiumRequiredError("ai_assistant")
	}

	a, err := h.selectAssessment(ctx, userID, strings.TrimSpace(input.AssessmentID))
	if err != nil {
		return nil, err
	}

	var completed []string
	if a != nil {
		keys, err := h.tasks.CompletedKeys(ctx, userID, a.ID)
		if err != nil {
			return nil, err
		}
		for k := range keys {
			completed = append(completed, k)
		}
		sort.Strings(completed)
	}

	history := append(recent(input.History, h.config.HistoryLimit), ChatMessage{Role: RoleUser, Content: message})
	reply, err := h.generator.GenerateText(ctx, buildPrompt(a, completed, history))
	if err != nil {
		h.logger.Warn("text generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	out := &Output{Reply: reply}
	if a != nil {
		out.AssessmentID = a.ID
	}
	h.logger.Info("assistant replied", map[string]interface{}{
		"assessmentId": out.AssessmentID,
		"historySize":  len(history),
	})
	return out, nil
}

// selectAssessment returns nil when the user has no assessment yet.
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

func recent(history []ChatMessage, limit int) []ChatMessage {
	kept := make([]ChatMessage, 0, len(history))
	for _, msg := range history {
		if strings.TrimSpace(msg.Content) != "" {
			kept = append(kept, msg)
		}
	}
	if limit > 0 && len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	return kept
}

func buildPrompt(a *models.Assessment, completed []string, history []ChatMessage) string {
	score, risk, suburb := notAvailable, notAvailable, notAvailable
	if a != nil {
		if a.ReadinessScore != nil {
			score = strconv.Itoa(*a.ReadinessScore)
		}
		if a.RiskLevel != "" {
			risk = a.RiskLevel
		}
		if a.Suburb != "" {
			suburb = a.Suburb
		}
	}
	tasks := "none"
	if len(completed) > 0 {
		tasks = strings.Join(completed, ", ")
	}

	var parts []string
	parts = append(parts, "You are a rental readiness expert assistant helping a tenant prepare their rental application.")

	parts = append(parts, "\nSelected Assessment Details:")
	parts = append(parts, fmt.Sprintf("- Readiness Score: %s", score))
	parts = append(parts, fmt.Sprintf("- Risk Level: %s", risk))
	parts = append(parts, fmt.Sprintf("- Suburb: %s", suburb))
	parts = append(parts, fmt.Sprintf("\nCompleted Tasks: %s", tasks))

	parts = append(parts, "\nYour Responsibilities:")
	parts = append(parts, "- Clearly explain the readiness score")
	parts = append(parts, "- Identify strengths and weaknesses")
	parts = append(parts, "- Suggest the next best improvement action")
	parts = append(parts, "- Provide practical, actionable advice")
	parts = append(parts, "- Keep responses structured and easy to understand")

	parts = append(parts, "\nConversation History:")
	for _, msg := range history {
		role := "User"
		if msg.Role == RoleAssistant {
			role = "Assistant"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", role, strings.TrimSpace(msg.Content)))
	}

	parts = append(parts, "Assistant:")

	return strings.Join(parts, "\n")
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
