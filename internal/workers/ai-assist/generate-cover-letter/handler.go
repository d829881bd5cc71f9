// internal/workers/ai-assist/generate-cover-letter/handler.go
package generatecoverletter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rental-readiness-workers/internal/common/camunda"
	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/genai"
	"rental-readiness-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-cover-letter"
)

type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

type Handler struct {
	config    *Config
	profiles  PremiumChecker
	generator genai.TextGenerator
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, profiles PremiumChecker, generator genai.TextGenerator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		profiles:  profiles,
		generator: generator,
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

// Execute writes a landlord-facing cover letter. Unknown tones fall back to
// professional.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.NewInvalidInputError("userId is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidInputError("name is required")
	}

	premium, err := h.profiles.IsPremium(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !premium {
		return nil, errors.NewPremiumRequiredError("cover_letter_generator")
	}

	tone := normalizeTone(input.Tone)
	content, err := h.generator.GenerateText(ctx, buildPrompt(input, tone))
	if err != nil {
		h.logger.Warn("text generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	h.logger.Info("cover letter generated", map[string]interface{}{
		"tone":        tone,
		"hasProperty": strings.TrimSpace(input.PropertyAddress) != "",
	})
	return &Output{Content: strings.TrimSpace(content), Tone: tone}, nil
}

func normalizeTone(tone string) string {
	tone = strings.ToLower(strings.TrimSpace(tone))
	if _, ok := toneInstructions[tone]; ok {
		return tone
	}
	return ToneProfessional
}

func buildPrompt(input *Input, tone string) string {
	var parts []string

	parts = append(parts, "You are a rental application expert.")
	parts = append(parts, "\nWrite a professional landlord-friendly rental cover letter.")
	parts = append(parts, fmt.Sprintf("\nTone: %s", toneInstructions[tone]))

	parts = append(parts, "\nApplicant Information:")
	parts = append(parts, fmt.Sprintf("- Name: %s", strings.TrimSpace(input.Name)))
	parts = append(parts, fmt.Sprintf("- Employment: %s", strings.TrimSpace(input.EmploymentInfo)))
	parts = append(parts, fmt.Sprintf("- Income: %s", strings.TrimSpace(input.Income)))
	parts = append(parts, fmt.Sprintf("- Rental History: %s", strings.TrimSpace(input.RentalHistory)))
	parts = append(parts, fmt.Sprintf("- Additional Notes: %s", strings.TrimSpace(input.CustomNote)))

	if address := strings.TrimSpace(input.PropertyAddress); address != "" {
		parts = append(parts, fmt.Sprintf("\nThe applicant is applying for property at: %s.", address))
		parts = append(parts, "Include a personalized sentence explaining interest in this property.")
	}

	parts = append(parts, "\nRequirements:")
	parts = append(parts, "- Emphasize reliability and financial stability.")
	parts = append(parts, "- Keep it between 250-400 words.")
	parts = append(parts, "- No placeholders.")
	parts = append(parts, "- Return only the final letter.")

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
