// internal/workers/analysis/detailed-readiness-analysis/handler_test.go
package detailedreadinessanalysis

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	assessments *memory.Assessments
	profiles    *memory.Profiles
	tasks       *memory.Tasks
	handler     *Handler
}

func newFixture(t *testing.T, scope string, rows ...*models.Assessment) *fixture {
	f := &fixture{
		assessments: memory.NewAssessments(rows...),
		profiles: memory.NewProfiles(
			&models.UserProfile{UserID: "user-1", Email: "sam@example.com", FirstName: "Sam", IsPremium: true},
			&models.UserProfile{UserID: "user-2", Email: "alex@example.com", IsPremium: true},
			&models.UserProfile{UserID: "user-free", Email: "free@example.com"},
		),
		tasks: memory.NewTasks(),
	}
	rents := repository.StaticRents{Table: readiness.NewRentTable(map[string]float64{"Southbank": 2600}, 2500)}
	f.handler = NewHandler(&Config{Timeout: 5 * time.Second, ImprovementScope: scope},
		f.assessments, f.profiles, f.tasks, rents, logger.NewTestLogger(t))
	f.handler.now = func() time.Time { return now }
	return f
}

func firstTimeRenter(id, owner string, score int, at time.Time) *models.Assessment {
	return &models.Assessment{
		ID:                    id,
		UserID:                &owner,
		SessionKey:            "sess-" + id,
		Postcode:              "3006",
		Suburb:                "Southbank",
		MonthlyRentBudget:     2400,
		HouseholdIncome:       1500,
		HouseholdIncomePeriod: models.PeriodWeekly,
		EmploymentStatus:      models.EmploymentPartTime,
		TimeInRole:            "8 months",
		RentalHistory:         models.RentalHistoryFirstTimeRenter,
		Documents:             []string{"passport"},
		ProofOfIncome:         models.ProofNone,
		MovingWithPets:        2,
		ReadinessScore:        &score,
		RiskLevel:             readiness.RiskFromScore(score),
		CreatedAt:             at,
	}
}

func complete(t *testing.T, tasks *memory.Tasks, assessmentID, key string) {
	def, ok := readiness.LookupTask(key)
	require.True(t, ok)
	_, err := tasks.Complete(context.Background(), "user-1", assessmentID, key, def.Points)
	require.NoError(t, err)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_LatestAssessmentDashboard(t *testing.T) {
	f := newFixture(t, repository.ScopeAssessment,
		firstTimeRenter("a-old", "user-1", 30, now.Add(-20*24*time.Hour)),
		firstTimeRenter("a-new", "user-1", 45, now.Add(-2*24*time.Hour)),
	)
	complete(t, f.tasks, "a-new", readiness.TaskUploadPayslip)
	complete(t, f.tasks, "a-new", readiness.TaskAddReferenceLetter)

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, "a-new", out.AssessmentID)
	assert.Equal(t, 53, out.Score, "45 base + 5 payslip + 3 reference")
	assert.Equal(t, 30, out.ScorePrev)
	assert.Equal(t, models.RiskMedium, out.RiskLevel)
	assert.Equal(t, "Sam", out.UserName)
	assert.True(t, out.IsPremium)

	assert.InDelta(t, 1500.0, out.IncomeWeekly, 0.001)
	assert.InDelta(t, 600.0, out.TargetRentWeekly, 0.001)
	assert.InDelta(t, 650.0, out.AvgRentWeekly, 0.001)

	require.Len(t, out.Categories, 5)
	require.Len(t, out.Breakdown, 5)
	assert.Equal(t, out.Categories[0].Score, out.Breakdown[0].Value)

	assert.Contains(t, out.Gaps, "rental_history")
	assert.Contains(t, out.Gaps, "employment")
	assert.Contains(t, out.Gaps, "documents")
	assert.Contains(t, out.Gaps, "proof_of_income")
	for i := 1; i < len(out.Recommendations); i++ {
		assert.LessOrEqual(t,
			readiness.PriorityRank(out.Recommendations[i-1].Priority),
			readiness.PriorityRank(out.Recommendations[i].Priority))
	}
	assert.Equal(t, readiness.PriorityLow, out.Recommendations[len(out.Recommendations)-1].Priority)

	require.Len(t, out.Steps, 3)
	assert.Equal(t, "⚠️", out.Steps[0].Icon)
	assert.Equal(t, 8, out.Steps[0].Impact)
	require.Len(t, out.Activity, 1)
	assert.Equal(t, "Assessment completed", out.Activity[0].Title)

	stored, err := f.assessments.GetByID(context.Background(), "a-new")
	require.NoError(t, err)
	assert.Equal(t, out.Gaps, stored.GapAnalysis)
	assert.Equal(t, out.Recommendations, stored.Recommendations)
}

func TestHandler_Execute_PreviousAssessmentsCarryFinalScores(t *testing.T) {
	f := newFixture(t, repository.ScopeAssessment,
		firstTimeRenter("a-old", "user-1", 30, now.Add(-20*24*time.Hour)),
		firstTimeRenter("a-new", "user-1", 45, now.Add(-2*24*time.Hour-time.Hour)),
	)
	complete(t, f.tasks, "a-old", readiness.TaskUploadBankStatement)

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1", AssessmentID: "a-old"})
	require.NoError(t, err)

	assert.Equal(t, 32, out.Score)
	assert.Equal(t, 45, out.ScorePrev, "trend compares against the newest other assessment")

	require.Len(t, out.PreviousAssessments, 2)
	assert.Equal(t, PreviousAssessment{
		ID: "a-new", Score: 45, RiskLevel: models.RiskMedium, DaysAgo: 2, CreatedAt: "2024-06-08",
	}, out.PreviousAssessments[0])
	assert.Equal(t, 32, out.PreviousAssessments[1].Score)
	assert.Equal(t, 20, out.PreviousAssessments[1].DaysAgo)
}

func TestHandler_Execute_UserScopeSumsAcrossAssessments(t *testing.T) {
	f := newFixture(t, repository.ScopeUser,
		firstTimeRenter("a-old", "user-1", 30, now.Add(-20*24*time.Hour)),
		firstTimeRenter("a-new", "user-1", 95, now.Add(-time.Hour)),
	)
	complete(t, f.tasks, "a-old", readiness.TaskUploadPayslip)
	complete(t, f.tasks, "a-old", readiness.TaskImproveCoverLetter)

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 100, out.Score, "final score is capped")
}

func TestHandler_Execute_SingleAssessmentTrendIsFlat(t *testing.T) {
	f := newFixture(t, repository.ScopeAssessment, firstTimeRenter("a-1", "user-2", 50, now.Add(-time.Hour)))

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-2"})
	require.NoError(t, err)
	assert.Equal(t, 50, out.ScorePrev)
	assert.Equal(t, "alex@example.com", out.UserName)
	assert.Equal(t, 0, out.PreviousAssessments[0].DaysAgo)
}

func TestHandler_Execute_NoAssessmentIsZeroResult(t *testing.T) {
	f := newFixture(t, repository.ScopeAssessment)

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Empty(t, out.AssessmentID)
	assert.Equal(t, 0, out.Score)
	assert.NotNil(t, out.Categories)
	assert.Empty(t, out.PreviousAssessments)
	assert.True(t, out.IsPremium)
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
		{"missing user", Input{}, errors.ErrCodeInvalidInput},
		{"not premium", Input{UserID: "user-free"}, errors.ErrCodePremiumRequired},
		{"not owner", Input{UserID: "user-2", AssessmentID: "a-1"}, errors.ErrCodeAssessmentForbidden},
		{"unknown assessment", Input{UserID: "user-1", AssessmentID: "nope"}, errors.ErrCodeAssessmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, repository.ScopeAssessment, firstTimeRenter("a-1", "user-1", 50, now))
			_, err := f.handler.Execute(context.Background(), &tt.input)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
}

func TestHandler_Execute_TaskStoreFailure(t *testing.T) {
	f := newFixture(t, repository.ScopeAssessment, firstTimeRenter("a-1", "user-1", 50, now))
	f.tasks.Err = errors.NewQueryTimeoutError("sum_task_points")

	_, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1"})
	assert.Equal(t, errors.ErrCodeQueryTimeout, errors.CodeOf(err))
}
