// internal/workers/ai-assist/assistant-reply/handler_test.go
package assistantreply

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/models"
	"rental-readiness-workers/internal/readiness"
	"rental-readiness-workers/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeGenerator struct {
	prompts []string
	reply   string
	err     error
}

func (g *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type fixture struct {
	tasks     *memory.Tasks
	generator *fakeGenerator
	handler   *Handler
}

func newFixture(t *testing.T, rows ...*models.Assessment) *fixture {
	f := &fixture{
		tasks:     memory.NewTasks(),
		generator: &fakeGenerator{reply: "Upload a recent payslip first."},
	}
	profiles := memory.NewProfiles(
		&models.UserProfile{UserID: "user-1", IsPremium: true},
		&models.UserProfile{UserID: "user-free"},
	)
	f.handler = NewHandler(&Config{Timeout: 5 * time.Second, HistoryLimit: 8},
		memory.NewAssessments(rows...), f.tasks, profiles, f.generator, logger.NewTestLogger(t))
	return f
}

func scored(id, owner string, score int, risk, suburb string, created time.Time) *models.Assessment {
	return &models.Assessment{
		ID:             id,
		UserID:         &owner,
		Suburb:         suburb,
		ReadinessScore: &score,
		RiskLevel:      risk,
		CreatedAt:      created,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_PromptCarriesAssessmentAndTasks(t *testing.T) {
	now := time.Now()
	f := newFixture(t,
		scored("a-old", "user-1", 40, models.RiskHigh, "Carlton", now.Add(-48*time.Hour)),
		scored("a-new", "user-1", 68, models.RiskMedium, "Fitzroy", now),
	)
	_, err := f.tasks.Complete(context.Background(), "user-1", "a-new", readiness.TaskUploadPayslip, 5)
	require.NoError(t, err)

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1", Message: "What should I do next?"})
	require.NoError(t, err)
	assert.Equal(t, "Upload a recent payslip first.", out.Reply)
	assert.Equal(t, "a-new", out.AssessmentID)

	require.Len(t, f.generator.prompts, 1)
	prompt := f.generator.prompts[0]
	assert.Contains(t, prompt, "- Readiness Score: 68")
	assert.Contains(t, prompt, "- Risk Level: Medium")
	assert.Contains(t, prompt, "- Suburb: Fitzroy")
	assert.Contains(t, prompt, "Completed Tasks: upload_payslip")
	assert.True(t, strings.HasSuffix(prompt, "User: What should I do next?\nAssistant:"))
}

func TestHandler_Execute_SelectedAssessment(t *testing.T) {
	now := time.Now()
	f := newFixture(t,
		scored("a-old", "user-1", 40, models.RiskHigh, "Carlton", now.Add(-48*time.Hour)),
		scored("a-new", "user-1", 68, models.RiskMedium, "Fitzroy", now),
	)

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1", AssessmentID: "a-old", Message: "Why high risk?"})
	require.NoError(t, err)
	assert.Equal(t, "a-old", out.AssessmentID)
	assert.Contains(t, f.generator.prompts[0], "- Suburb: Carlton")
	assert.Contains(t, f.generator.prompts[0], "Completed Tasks: none")
}

func TestHandler_Execute_NoAssessmentUsesPlaceholders(t *testing.T) {
	f := newFixture(t)

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1", Message: "Hi"})
	require.NoError(t, err)
	assert.Empty(t, out.AssessmentID)

	prompt := f.generator.prompts[0]
	assert.Contains(t, prompt, "- Readiness Score: N/A")
	assert.Contains(t, prompt, "- Risk Level: N/A")
	assert.Contains(t, prompt, "- Suburb: N/A")
}

func TestHandler_Execute_HistoryTrimmedToRecentMessages(t *testing.T) {
	f := newFixture(t, scored("a-1", "user-1", 50, models.RiskMedium, "Brunswick", time.Now()))

	var history []ChatMessage
	for i := 1; i <= 10; i++ {
		role := RoleUser
		if i%2 == 0 {
			role = RoleAssistant
		}
		history = append(history, ChatMessage{Role: role, Content: fmt.Sprintf("message %02d", i)})
	}
	history = append(history, ChatMessage{Role: RoleUser, Content: "   "})

	_, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1", Message: "latest", History: history})
	require.NoError(t, err)

	prompt := f.generator.prompts[0]
	assert.NotContains(t, prompt, "message 01")
	assert.NotContains(t, prompt, "message 02")
	assert.Contains(t, prompt, "User: message 03")
	assert.Contains(t, prompt, "Assistant: message 10")
	assert.Contains(t, prompt, "User: latest")
}

// ==========================
// Validation & Error Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		wantCode errors.ErrorCode
	}{
		{"missing user", Input{Message: "hi"}, errors.ErrCodeInvalidInput},
		{"blank message", Input{UserID: "user-1", Message: "  "}, errors.ErrCodeInvalidInput},
		{"not premium", Input{UserID: "user-free", Message: "hi"}, errors.ErrCodePremiumRequired},
		{"someone else's assessment", Input{UserID: "user-1", AssessmentID: "a-other", Message: "hi"}, errors.ErrCodeAssessmentForbidden},
		{"unknown assessment", Input{UserID: "user-1", AssessmentID: "a-9", Message: "hi"}, errors.ErrCodeAssessmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, scored("a-other", "user-2", 70, models.RiskLow, "Richmond", time.Now()))
			_, err := f.handler.Execute(context.Background(), &tt.input)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Empty(t, f.generator.prompts, "generator is never called on rejected requests")
		})
	}
}

func TestHandler_Execute_GeneratorFailure(t *testing.T) {
	f := newFixture(t)
	f.generator.err = errors.NewTextGenerationUnavailableError(stderrors.New("503"))

	_, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1", Message: "hi"})
	assert.Equal(t, errors.ErrCodeTextGenerationUnavailable, errors.CodeOf(err))
}
