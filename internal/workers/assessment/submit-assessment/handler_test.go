// internal/workers/assessment/submit-assessment/handler_test.go
package submitassessment

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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T, store AssessmentStore) *Handler {
	rents := readiness.NewRentTable(map[string]float64{"Docklands": 2400}, 2500)
	return NewHandler(
		&Config{Timeout: 5 * time.Second},
		store,
		repository.StaticRents{Table: rents},
		logger.NewTestLogger(t),
	)
}

func jobWith(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: TaskType, Variables: variables}}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_StrongApplicant(t *testing.T) {
	store := memory.NewAssessments()
	handler := createTestHandler(t, store)

	out, err := handler.Execute(context.Background(), &Input{
		SessionKey:            "sess-1",
		Suburb:                "Docklands",
		MonthlyRentBudget:     "2,000",
		HouseholdIncome:       120000.0,
		HouseholdIncomePeriod: "Annual",
		EmploymentStatus:      "full_time",
		TimeInRole:            "2 years",
		RentalHistory:         "rented_locally",
		Documents:             []string{"passport", "driver_license", "bank_statement", " "},
		ProofOfIncome:         "recent_payslip",
		MovingWithAdults:      "2",
		MovingWithChildren:    nil,
		MovingWithPets:        1.0,
	})
	require.NoError(t, err)

	// every rule passes; the raw total of 105 is clamped
	assert.Equal(t, 100, out.ReadinessScore)
	assert.Equal(t, models.RiskLow, out.RiskLevel)
	assert.Empty(t, out.Weaknesses)
	assert.NotEmpty(t, out.AssessmentID)

	stored, err := store.GetByID(context.Background(), out.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, stored.MonthlyRentBudget)
	assert.Equal(t, "annual", stored.HouseholdIncomePeriod)
	assert.Equal(t, []string{"passport", "driver_license", "bank_statement"}, stored.Documents)
	assert.Equal(t, 2, stored.MovingWithAdults)
	assert.Nil(t, stored.UserID)
	assert.Equal(t, 100, stored.BaseScore())
}

func TestHandler_Execute_MalformedNumbersDegradeToZero(t *testing.T) {
	store := memory.NewAssessments()
	handler := createTestHandler(t, store)

	out, err := handler.Execute(context.Background(), &Input{
		SessionKey:        "sess-2",
		UserID:            "user-9",
		MonthlyRentBudget: "lots",
		HouseholdIncome:   "n/a",
		Lat:               "not-a-number",
		ProofOfIncome:     "None",
		MovingWithPets:    "three",
	})
	require.NoError(t, err)

	// budget 0 <= default median (+20) and household size (+5)
	assert.Equal(t, 25, out.ReadinessScore)
	assert.Equal(t, models.RiskHigh, out.RiskLevel)
	assert.Contains(t, out.Weaknesses, "Income not provided")
	assert.Contains(t, out.Weaknesses, "No proof of income provided")

	stored, err := store.GetByID(context.Background(), out.AssessmentID)
	require.NoError(t, err)
	assert.Nil(t, stored.Lat)
	assert.True(t, stored.OwnedBy("user-9"))
}

func TestHandler_Execute_OversizedNumbersSaturate(t *testing.T) {
	store := memory.NewAssessments()
	handler := createTestHandler(t, store)

	out, err := handler.Execute(context.Background(), &Input{
		SessionKey:       "sess-4",
		EmploymentStatus: "full_time",
		TimeInRole:       "999999999999999999 years",
		MovingWithAdults: 1e30,
		Lat:              "$1,234",
	})
	require.NoError(t, err)

	assert.Contains(t, out.Strengths, "Tenured in current role")
	assert.NotContains(t, out.Strengths, "Household size manageable")
	assert.NotContains(t, out.Weaknesses, "Time in role not provided")

	stored, err := store.GetByID(context.Background(), out.AssessmentID)
	require.NoError(t, err)
	assert.Positive(t, stored.MovingWithAdults)
	require.NotNil(t, stored.Lat)
	assert.Equal(t, 1234.0, *stored.Lat)
}

func TestHandler_Execute_EachSubmissionIsNewRow(t *testing.T) {
	store := memory.NewAssessments()
	handler := createTestHandler(t, store)

	first, err := handler.Execute(context.Background(), &Input{SessionKey: "sess-3"})
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), &Input{SessionKey: "sess-3"})
	require.NoError(t, err)

	assert.NotEqual(t, first.AssessmentID, second.AssessmentID)
	list, err := store.ListBySession(context.Background(), "sess-3")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// ==========================
// Validation & Error Tests
// ==========================

func TestHandler_Process_SchemaValidation(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantCode  errors.ErrorCode
	}{
		{"missing session key", `{"suburb":"Docklands"}`, errors.ErrCodeInvalidInput},
		{"documents not a list", `{"sessionKey":"s","documents":"passport"}`, errors.ErrCodeInvalidInput},
		{"object as budget", `{"sessionKey":"s","monthlyRentBudget":{"v":1}}`, errors.ErrCodeInvalidInput},
		{"broken json", `{"sessionKey":`, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, memory.NewAssessments())
			_, err := handler.process(context.Background(), jobWith(tt.variables))
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
}

func TestHandler_Process_AcceptsLooseTypesAndExtraVariables(t *testing.T) {
	handler := createTestHandler(t, memory.NewAssessments())

	out, err := handler.process(context.Background(), jobWith(`{
		"sessionKey": "sess-4",
		"monthlyRentBudget": "1800",
		"householdIncome": 90000,
		"householdIncomePeriod": null,
		"lat": null,
		"documents": ["passport"],
		"employmentStatus": "contractor",
		"processCorrelationId": "abc"
	}`))
	require.NoError(t, err)
	assert.Contains(t, out.Weaknesses, "Employment stability could be improved")
	assert.Contains(t, out.Strengths, "Affordable rent relative to income")
}

func TestHandler_Execute_StoreFailure(t *testing.T) {
	store := memory.NewAssessments()
	store.Err = errors.NewDatabaseInsertFailedError(assert.AnError)
	handler := createTestHandler(t, store)

	_, err := handler.Execute(context.Background(), &Input{SessionKey: "s"})
	assert.Equal(t, errors.ErrCodeDatabaseInsertFailed, errors.CodeOf(err))
}

func TestHandler_Execute_BlankSessionKey(t *testing.T) {
	handler := createTestHandler(t, memory.NewAssessments())
	_, err := handler.Execute(context.Background(), &Input{SessionKey: "   "})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
}
