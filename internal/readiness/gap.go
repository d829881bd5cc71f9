package readiness

import (
	"sort"
	"strings"

	"rental-readiness-workers/internal/models"
)

// Recommendation priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
	PriorityBoost  = "boost"
)

var priorityRank = map[string]int{
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
	PriorityBoost:  4,
}

// PriorityRank orders priorities ascending; unknown values sort last.
func PriorityRank(priority string) int {
	if r, ok := priorityRank[priority]; ok {
		return r
	}
	return 5
}

// GapAnalysis is the output of AnalyzeGaps.
type GapAnalysis struct {
	Gaps            map[string]string       `json:"gaps"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// AnalyzeGaps evaluates each gap rule independently against the snapshot and the
// category scores, then orders recommendations by priority keeping rule order
// within a priority.
func AnalyzeGaps(a *models.Assessment, scores map[string]int) GapAnalysis {
	gaps := map[string]string{}
	var recs []models.Recommendation
	add := func(category, priority, suggestion string) {
		recs = append(recs, models.Recommendation{Category: category, Priority: priority, Suggestion: suggestion})
	}

	if scores[CategoryIncomeStrength] < 50 {
		gaps["income"] = "Income may be insufficient relative to rent budget."
		add("income", PriorityHigh, "Consider adding a guarantor to strengthen your application.")
		add("income", PriorityMedium, "Provide 3+ recent payslips and consistent bank statements.")
	}

	if strings.EqualFold(a.RentalHistory, models.RentalHistoryFirstTimeRenter) {
		gaps["rental_history"] = "No rental history found."
		add("rental_history", PriorityHigh, "Provide a character reference or employer reference.")
		add("rental_history", PriorityMedium, "Offer additional upfront rent if possible.")
	}

	switch strings.ToLower(a.EmploymentStatus) {
	case models.EmploymentPartTime, models.EmploymentSelfEmployed, models.EmploymentStudent:
		gaps["employment"] = "Employment stability may require additional proof."
		add("employment", PriorityMedium, "Attach employment contract or employer letter.")
		add("employment", PriorityMedium, "Provide last 3 months bank statements.")
	}

	if len(a.Documents) < 2 {
		gaps["documents"] = "Limited supporting documents uploaded."
		add("documents", PriorityMedium, "Upload at least 2 ID documents (passport, driver license).")
	}

	if strings.EqualFold(a.ProofOfIncome, models.ProofNone) {
		gaps["proof_of_income"] = "No proof of income provided."
		add("proof_of_income", PriorityHigh, "Upload recent payslips or bank statements.")
	}

	if a.MovingWithPets > 1 {
		add("pets", PriorityLow, "Prepare pet references and vaccination records.")
	}

	SortRecommendations(recs)
	if recs == nil {
		recs = []models.Recommendation{}
	}
	return GapAnalysis{Gaps: gaps, Recommendations: recs}
}

// SortRecommendations stable-sorts recs by priority rank.
func SortRecommendations(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return PriorityRank(recs[i].Priority) < PriorityRank(recs[j].Priority)
	})
}
