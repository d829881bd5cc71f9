// internal/workers/action-plan/record-artifact/handler_test.go
package recordartifact

import (
	"context"
	"testing"
	"time"

	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/models"
	"rental-readiness-workers/internal/readiness"
	"rental-readiness-workers/internal/repository"
	"rental-readiness-workers/internal/repository/memory"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fixture struct {
	artifacts *memory.Artifacts
	tasks     *memory.Tasks
	handler   *Handler
}

func newFixture(t *testing.T, artifacts ArtifactStore) *fixture {
	owner := "user-1"
	score := 50
	f := &fixture{artifacts: memory.NewArtifacts(), tasks: memory.NewTasks()}
	if artifacts == nil {
		artifacts = f.artifacts
	}
	f.handler = NewHandler(
		&Config{Timeout: 5 * time.Second, ImprovementScope: repository.ScopeAssessment},
		memory.NewAssessments(&models.Assessment{ID: "a-1", UserID: &owner, ReadinessScore: &score, CreatedAt: time.Now()}),
		artifacts,
		f.tasks,
		memory.NewProfiles(&models.UserProfile{UserID: "user-1", IsPremium: true}),
		logger.NewTestLogger(t),
	)
	return f
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_PayslipCompletesTask(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.handler.Execute(context.Background(), &Input{
		UserID: "user-1", AssessmentID: "a-1", Type: "Payslip", FileRef: "docs/payslip-may.pdf",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ArtifactID)
	assert.Equal(t, models.ArtifactPayslip, out.Type)
	assert.Equal(t, readiness.TaskUploadPayslip, out.TaskKey)
	assert.True(t, out.Awarded)
	assert.Equal(t, 55, out.FinalScore)

	has, err := f.artifacts.HasArtifact(context.Background(), "user-1", "a-1", models.ArtifactPayslip)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHandler_Execute_SecondUploadDoesNotReaward(t *testing.T) {
	f := newFixture(t, nil)
	input := &Input{UserID: "user-1", AssessmentID: "a-1", Type: models.ArtifactBankStatement, FileRef: "docs/bank.pdf"}

	_, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)
	out, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, out.Awarded)
	assert.Equal(t, 52, out.FinalScore)
}

func TestHandler_Execute_IDDocumentHasNoTask(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.handler.Execute(context.Background(), &Input{
		UserID: "user-1", AssessmentID: "a-1", Type: models.ArtifactIDDocument, FileRef: "docs/passport.png",
	})
	require.NoError(t, err)
	assert.Empty(t, out.TaskKey)
	assert.False(t, out.Awarded)
	assert.Equal(t, 50, out.FinalScore)
}

func TestHandler_Execute_TextOnlyReferenceLetter(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.handler.Execute(context.Background(), &Input{
		UserID: "user-1", AssessmentID: "a-1", Type: models.ArtifactReferenceLetter, TextContent: "Paid rent on time for 3 years.",
	})
	require.NoError(t, err)
	assert.Equal(t, readiness.TaskAddReferenceLetter, out.TaskKey)
	assert.True(t, out.Awarded)
	assert.Equal(t, 53, out.FinalScore)
}

func TestHandler_Execute_CoverLetterReplacesPrevious(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.handler.Execute(ctx, &Input{UserID: "user-1", AssessmentID: "a-1", Type: models.ArtifactCoverLetter, FileRef: "cl/v1.pdf"})
	require.NoError(t, err)
	second, err := f.handler.Execute(ctx, &Input{UserID: "user-1", AssessmentID: "a-1", Type: models.ArtifactCoverLetter, FileRef: "cl/v2.pdf"})
	require.NoError(t, err)

	assert.Equal(t, first.ArtifactID, second.ArtifactID)
	stored, err := f.artifacts.First(ctx, "user-1", "a-1", models.ArtifactCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, "cl/v2.pdf", stored.FileRef)
	assert.Equal(t, 54, second.FinalScore)
}

func TestHandler_Execute_PostgresDocumentInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO user_documents`).
		WithArgs(sqlmock.AnyArg(), "user-1", "a-1", models.ArtifactPayslip, "docs/p.pdf", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	f := newFixture(t, repository.NewArtifactStore(db))
	out, err := f.handler.Execute(context.Background(), &Input{
		UserID: "user-1", AssessmentID: "a-1", Type: models.ArtifactPayslip, FileRef: "docs/p.pdf",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ArtifactID)
	assert.NoError(t, mock.ExpectationsWereMet())
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
		{"unknown type", Input{UserID: "user-1", AssessmentID: "a-1", Type: "selfie", FileRef: "x"}, errors.ErrCodeUnknownArtifactType},
		{"document without file", Input{UserID: "user-1", AssessmentID: "a-1", Type: models.ArtifactPayslip}, errors.ErrCodeFileRequired},
		{"cover letter without file", Input{UserID: "user-1", AssessmentID: "a-1", Type: models.ArtifactCoverLetter, TextContent: "Dear"}, errors.ErrCodeFileRequired},
		{"empty reference", Input{UserID: "user-1", AssessmentID: "a-1", Type: models.ArtifactReferenceLetter}, errors.ErrCodeInvalidInput},
		{"not owner", Input{UserID: "user-2", AssessmentID: "a-1", Type: models.ArtifactPayslip, FileRef: "x"}, errors.ErrCodeAssessmentForbidden},
		{"missing ids", Input{Type: models.ArtifactPayslip, FileRef: "x"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			_, err := f.handler.Execute(context.Background(), &tt.input)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))

			keys, err := f.tasks.CompletedKeys(context.Background(), "user-1", "a-1")
			require.NoError(t, err)
			assert.Empty(t, keys, "failed uploads never award points")
		})
	}
}
