package readiness

import (
	"testing"

	"rental-readiness-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeGaps_FirstTimeRenterWithoutProof(t *testing.T) {
	a := &models.Assessment{
		MonthlyRentBudget: 1500,
		RentalHistory:     models.RentalHistoryFirstTimeRenter,
		Documents:         []string{"passport"},
		ProofOfIncome:     models.ProofNone,
		EmploymentStatus:  models.EmploymentFullTime,
	}
	scores := ScoreMap(NewCategoryScorer(testRents()).Score(a))
	require.Equal(t, 10, scores[CategoryIncomeStrength])

	res := AnalyzeGaps(a, scores)

	assert.Equal(t, map[string]string{
		"income":          "Income may be insufficient relative to rent budget.",
		"rental_history":  "No rental history found.",
		"documents":       "Limited supporting documents uploaded.",
		"proof_of_income": "No proof of income provided.",
	}, res.Gaps)

	require.GreaterOrEqual(t, len(res.Recommendations), 5)
	assert.Equal(t, []models.Recommendation{
		{Category: "income", Priority: PriorityHigh, Suggestion: "Consider adding a guarantor to strengthen your application."},
		{Category: "rental_history", Priority: PriorityHigh, Suggestion: "Provide a character reference or employer reference."},
		{Category: "proof_of_income", Priority: PriorityHigh, Suggestion: "Upload recent payslips or bank statements."},
		{Category: "income", Priority: PriorityMedium, Suggestion: "Provide 3+ recent payslips and consistent bank statements."},
		{Category: "rental_history", Priority: PriorityMedium, Suggestion: "Offer additional upfront rent if possible."},
		{Category: "documents", Priority: PriorityMedium, Suggestion: "Upload at least 2 ID documents (passport, driver license)."},
	}, res.Recommendations)
}

func TestAnalyzeGaps_EmploymentAndPets(t *testing.T) {
	a := &models.Assessment{
		EmploymentStatus: models.EmploymentSelfEmployed,
		Documents:        []string{"passport", "driver_license"},
		ProofOfIncome:    models.ProofBankStatements,
		MovingWithPets:   2,
	}
	res := AnalyzeGaps(a, map[string]int{CategoryIncomeStrength: 85})

	assert.Equal(t, map[string]string{
		"employment": "Employment stability may require additional proof.",
	}, res.Gaps)
	require.Len(t, res.Recommendations, 3)
	assert.Equal(t, "employment", res.Recommendations[0].Category)
	assert.Equal(t, "Attach employment contract or employer letter.", res.Recommendations[0].Suggestion)
	assert.Equal(t, "Provide last 3 months bank statements.", res.Recommendations[1].Suggestion)
	assert.Equal(t, models.Recommendation{
		Category: "pets", Priority: PriorityLow, Suggestion: "Prepare pet references and vaccination records.",
	}, res.Recommendations[2])
	_, hasPetGap := res.Gaps["pets"]
	assert.False(t, hasPetGap)
}

func TestAnalyzeGaps_NothingFires(t *testing.T) {
	a := strongAssessment()
	res := AnalyzeGaps(a, map[string]int{CategoryIncomeStrength: 50})

	assert.Empty(t, res.Gaps)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
}

func TestAnalyzeGaps_IncomeKeyedOnIncomeStrength(t *testing.T) {
	a := strongAssessment()

	res := AnalyzeGaps(a, map[string]int{CategoryIncomeStrength: 49})
	assert.Contains(t, res.Gaps, "income")

	res = AnalyzeGaps(a, map[string]int{CategoryIncomeStrength: 85, "income": 0})
	assert.NotContains(t, res.Gaps, "income")
}

func TestSortRecommendations_StableWithUnknownLast(t *testing.T) {
	recs := []models.Recommendation{
		{Category: "a", Priority: "urgent"},
		{Category: "b", Priority: PriorityLow},
		{Category: "c", Priority: PriorityBoost},
		{Category: "d", Priority: PriorityMedium},
		{Category: "e", Priority: PriorityHigh},
		{Category: "f", Priority: PriorityMedium},
		{Category: "g", Priority: PriorityHigh},
	}
	SortRecommendations(recs)

	var order []string
	for _, r := range recs {
		order = append(order, r.Category)
	}
	assert.Equal(t, []string{"e", "g", "d", "f", "b", "c", "a"}, order)
}

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 1, PriorityRank(PriorityHigh))
	assert.Equal(t, 2, PriorityRank(PriorityMedium))
	assert.Equal(t, 3, PriorityRank(PriorityLow))
	assert.Equal(t, 4, PriorityRank(PriorityBoost))
	assert.Equal(t, 5, PriorityRank(""))
}
