package readiness

import (
	"testing"

	"rental-readiness-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func testRents() *RentTable {
	return NewRentTable(map[string]float64{
		"Sydney CBD":       3000,
		"Darling Harbour":  3200,
		"The Rocks":        3100,
		"Melbourne CBD":    2500,
		"Docklands":        2400,
		"Southbank":        2600,
		"Brisbane CBD":     2000,
		"Fortitude Valley": 2100,
	}, 2500)
}

func strongAssessment() *models.Assessment {
	return &models.Assessment{
		ID:                    "a-strong",
		Suburb:                "Sydney CBD",
		MonthlyRentBudget:     900,
		HouseholdIncome:       3214,
		HouseholdIncomePeriod: models.PeriodMonthly,
		EmploymentStatus:      models.EmploymentFullTime,
		TimeInRole:            "18 months",
		RentalHistory:         models.RentalHistoryRentedLocally,
		Documents:             []string{"passport", "driver_license", "bank_statement"},
		ProofOfIncome:         models.ProofRecentPayslip,
		MovingWithAdults:      2,
	}
}

func categoryByKey(t *testing.T, cats []CategoryScore, key string) CategoryScore {
	t.Helper()
	for _, c := range cats {
		if c.Category == key {
			return c
		}
	}
	require.Failf(t, "category not found", "key=%s", key)
	return CategoryScore{}
}

// ==========================
// Category Scorer
// ==========================

func TestCategoryScorer_OrderAndShape(t *testing.T) {
	cats := NewCategoryScorer(testRents()).Score(strongAssessment())

	require.Len(t, cats, 5)
	keys := []string{
		CategoryIncomeStrength,
		CategoryEmploymentStability,
		CategoryRentalHistory,
		CategoryDocumentationReadiness,
		CategoryOverallCompetitiveness,
	}
	for i, c := range cats {
		assert.Equal(t, keys[i], c.Category)
		assert.GreaterOrEqual(t, c.Score, 0)
		assert.LessOrEqual(t, c.Score, 100)
		assert.Equal(t, RiskFromScore(c.Score), c.RiskLevel)
		assert.NotEmpty(t, c.Explanation)
		assert.NotEmpty(t, c.WhyRisk)
		assert.NotEmpty(t, c.LandlordsLookFor)
	}
}

func TestCategoryScorer_IncomeStrength(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(a *models.Assessment)
		wantScore int
		wantRisk  string
	}{
		{
			name: "income missing",
			mutate: func(a *models.Assessment) {
				a.HouseholdIncome = 0
				a.MonthlyRentBudget = 1500
			},
			wantScore: 10,
			wantRisk:  models.RiskHigh,
		},
		{
			name:      "rent missing",
			mutate:    func(a *models.Assessment) { a.MonthlyRentBudget = 0 },
			wantScore: 20,
			wantRisk:  models.RiskHigh,
		},
		{
			name:      "ratio 0.28 strong",
			mutate:    func(a *models.Assessment) {},
			wantScore: 85,
			wantRisk:  models.RiskLow,
		},
		{
			name: "ratio 0.35 acceptable",
			mutate: func(a *models.Assessment) {
				a.HouseholdIncome = 1000
				a.HouseholdIncomePeriod = models.PeriodWeekly
				a.MonthlyRentBudget = 1500
			},
			wantScore: 70,
			wantRisk:  models.RiskLow,
		},
		{
			name: "ratio 0.40 tight",
			mutate: func(a *models.Assessment) {
				a.HouseholdIncome = 60000
				a.HouseholdIncomePeriod = models.PeriodAnnual
				a.MonthlyRentBudget = 2000
			},
			wantScore: 50,
			wantRisk:  models.RiskMedium,
		},
		{
			name: "ratio above 0.45",
			mutate: func(a *models.Assessment) {
				a.HouseholdIncome = 4000
				a.MonthlyRentBudget = 2000
			},
			wantScore: 30,
			wantRisk:  models.RiskHigh,
		},
		{
			name: "individual income used when household missing",
			mutate: func(a *models.Assessment) {
				a.HouseholdIncome = 0
				a.IndividualIncome = 60000
				a.IndividualIncomePeriod = models.PeriodAnnual
				a.MonthlyRentBudget = 1000
			},
			wantScore: 85,
			wantRisk:  models.RiskLow,
		},
	}

	scorer := NewCategoryScorer(testRents())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := strongAssessment()
			tt.mutate(a)
			c := categoryByKey(t, scorer.Score(a), CategoryIncomeStrength)
			assert.Equal(t, tt.wantScore, c.Score)
			assert.Equal(t, tt.wantRisk, c.RiskLevel)
		})
	}
}

func TestCategoryScorer_IncomeWhyMentionsRatio(t *testing.T) {
	c := categoryByKey(t, NewCategoryScorer(testRents()).Score(strongAssessment()), CategoryIncomeStrength)
	assert.Equal(t, []string{"Rent is ~28% of income (strong)."}, c.WhyRisk)
}

func TestCategoryScorer_EmploymentStability(t *testing.T) {
	tests := []struct {
		status string
		tenure string
		want   int
	}{
		{models.EmploymentFullTime, "18 months", 95},
		{models.EmploymentFullTime, "2 years", 95},
		{models.EmploymentSelfEmployed, "8 months", 73},
		{models.EmploymentStudent, "2 years", 60},
		{models.EmploymentPartTime, "3 months", 48},
		{"", "3 weeks", 23},
		{"", "", 20},
		{"Full_Time", "", 80},
	}
	scorer := NewCategoryScorer(testRents())
	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.tenure, func(t *testing.T) {
			a := strongAssessment()
			a.EmploymentStatus = tt.status
			a.TimeInRole = tt.tenure
			assert.Equal(t, tt.want, categoryByKey(t, scorer.Score(a), CategoryEmploymentStability).Score)
		})
	}
}

func TestCategoryScorer_RentalHistory(t *testing.T) {
	tests := []struct {
		history string
		issues  string
		want    int
	}{
		{models.RentalHistoryRentedLocally, "", 80},
		{models.RentalHistoryOwnedHome, "", 75},
		{models.RentalHistoryFirstTimeRenter, "", 45},
		{models.RentalHistoryRentedOverseas, "", 45},
		{"", "", 30},
		{models.RentalHistoryRentedLocally, "late payments in 2021", 70},
		{"", "broken lease", 20},
	}
	scorer := NewCategoryScorer(testRents())
	for _, tt := range tests {
		t.Run(tt.history+"/"+tt.issues, func(t *testing.T) {
			a := strongAssessment()
			a.RentalHistory = tt.history
			a.ContextIssues = tt.issues
			assert.Equal(t, tt.want, categoryByKey(t, scorer.Score(a), CategoryRentalHistory).Score)
		})
	}
}

func TestCategoryScorer_DocumentationReadiness(t *testing.T) {
	tests := []struct {
		name string
		docs []string
		poi  string
		want int
	}{
		{"three docs with payslip proof", []string{"passport", "payslip", "bank_statement"}, models.ProofRecentPayslip, 80},
		{"five docs capped at 80 plus proof", []string{"a", "b", "c", "d", "e"}, models.ProofBankStatements, 100},
		{"five docs no proof", []string{"a", "b", "c", "d", "e"}, models.ProofNone, 80},
		{"one doc empty proof", []string{"passport"}, "", 20},
		{"no docs with proof", nil, models.ProofRecentPayslip, 20},
	}
	scorer := NewCategoryScorer(testRents())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := strongAssessment()
			a.Documents = tt.docs
			a.ProofOfIncome = tt.poi
			assert.Equal(t, tt.want, categoryByKey(t, scorer.Score(a), CategoryDocumentationReadiness).Score)
		})
	}
}

func TestCategoryScorer_OverallCompetitiveness(t *testing.T) {
	scorer := NewCategoryScorer(testRents())

	// 85*.30 + 95*.25 + 80*.20 + 80*.15 + 70*.10 = 84.25
	c := categoryByKey(t, scorer.Score(strongAssessment()), CategoryOverallCompetitiveness)
	assert.Equal(t, 84, c.Score)
	assert.Equal(t, models.RiskLow, c.RiskLevel)

	// 10*.30 + 20*.25 + 30*.20 + 0*.15 + 70*.10 = 21
	empty := &models.Assessment{}
	c = categoryByKey(t, scorer.Score(empty), CategoryOverallCompetitiveness)
	assert.Equal(t, 21, c.Score)
	assert.Equal(t, models.RiskHigh, c.RiskLevel)
}

func TestCategoryScorer_LocationUsesSuburbMedian(t *testing.T) {
	scorer := NewCategoryScorer(testRents())

	within := strongAssessment()
	within.Suburb = "Brisbane CBD"
	within.MonthlyRentBudget = 2000
	within.HouseholdIncome = 20000 // keeps income tier fixed at 85

	over := strongAssessment()
	over.Suburb = "Brisbane CBD"
	over.MonthlyRentBudget = 2001
	over.HouseholdIncome = 20000

	a := categoryByKey(t, scorer.Score(within), CategoryOverallCompetitiveness).Score
	b := categoryByKey(t, scorer.Score(over), CategoryOverallCompetitiveness).Score
	assert.Equal(t, 3, a-b, "location swings 30 points at 10% weight")
}

func TestCategoryScorer_Idempotent(t *testing.T) {
	scorer := NewCategoryScorer(testRents())
	a := strongAssessment()
	assert.Equal(t, scorer.Score(a), scorer.Score(a))
}

func TestRiskFromScore(t *testing.T) {
	assert.Equal(t, models.RiskLow, RiskFromScore(100))
	assert.Equal(t, models.RiskLow, RiskFromScore(70))
	assert.Equal(t, models.RiskMedium, RiskFromScore(69))
	assert.Equal(t, models.RiskMedium, RiskFromScore(40))
	assert.Equal(t, models.RiskHigh, RiskFromScore(39))
	assert.Equal(t, models.RiskHigh, RiskFromScore(0))
}

func TestScoreMap(t *testing.T) {
	m := ScoreMap(NewCategoryScorer(testRents()).Score(strongAssessment()))
	assert.Len(t, m, 5)
	assert.Equal(t, 85, m[CategoryIncomeStrength])
	assert.Equal(t, 95, m[CategoryEmploymentStability])
}
