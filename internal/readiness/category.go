package readiness

import (
	"fmt"
	"math"
	"strings"

	"rental-readiness-workers/internal/models"
)

// Category keys, in breakdown order.
const (
	CategoryIncomeStrength         = "income_strength"
	CategoryEmploymentStability    = "employment_stability"
	CategoryRentalHistory          = "rental_history"
	CategoryDocumentationReadiness = "documentation_readiness"
	CategoryOverallCompetitiveness = "overall_competitiveness"
)

// Weights for overall_competitiveness.
const (
	weightIncome     = 0.30
	weightEmployment = 0.25
	weightRental     = 0.20
	weightDocuments  = 0.15
	weightLocation   = 0.10
)

// CategoryScore is one row of the detailed breakdown.
type CategoryScore struct {
	Category         string   `json:"category"`
	Score            int      `json:"score"`
	RiskLevel        string   `json:"riskLevel"`
	Explanation      string   `json:"explanation"`
	WhyRisk          []string `json:"whyRisk"`
	LandlordsLookFor []string `json:"landlordsLookFor"`
}

// RiskFromScore maps a 0-100 score onto a risk tier.
func RiskFromScore(score int) string {
	switch {
	case score >= 70:
		return models.RiskLow
	case score >= 40:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

// CategoryScorer computes the five-category breakdown.
type CategoryScorer struct {
	rents RentLookup
}

func NewCategoryScorer(rents RentLookup) *CategoryScorer {
	return &CategoryScorer{rents: rents}
}

// Score returns the five categories in fixed order. The result depends only on a
// and the rent dataset.
func (s *CategoryScorer) Score(a *models.Assessment) []CategoryScore {
	income := s.incomeStrength(a)
	employment := s.employmentStability(a)
	rental := s.rentalHistory(a)
	documents := s.documentationReadiness(a)
	overall := s.overallCompetitiveness(a, income.Score, employment.Score, rental.Score, documents.Score)
	return []CategoryScore{income, employment, rental, documents, overall}
}

// ScoreMap flattens a breakdown into category -> score.
func ScoreMap(categories []CategoryScore) map[string]int {
	out := make(map[string]int, len(categories))
	for _, c := range categories {
		out[c.Category] = c.Score
	}
	return out
}

func newCategory(key string, score int, explanation string, why, lookFor []string) CategoryScore {
	score = clamp(score, 0, 100)
	return CategoryScore{
		Category:         key,
		Score:            score,
		RiskLevel:        RiskFromScore(score),
		Explanation:      explanation,
		WhyRisk:          why,
		LandlordsLookFor: lookFor,
	}
}

func (s *CategoryScorer) incomeStrength(a *models.Assessment) CategoryScore {
	lookFor := []string{
		"Consistent income that covers rent comfortably",
		"Rent typically ≤ 30–35% of income",
		"Clear proof of income (payslips/bank statements)",
	}

	annual := AnnualIncome(a)
	rent := a.MonthlyRentBudget

	if annual <= 0 {
		return newCategory(CategoryIncomeStrength, 10,
			"Income is missing or invalid, so affordability can't be verified.",
			[]string{"Household income not provided."}, lookFor)
	}
	if rent <= 0 {
		return newCategory(CategoryIncomeStrength, 20,
			"Your rent target is missing, so affordability can't be assessed.",
			[]string{"Monthly rent budget not provided."}, lookFor)
	}

	ratio := rent / (annual / 12)
	pct := int(ratio * 100)

	var score int
	var label string
	switch {
	case ratio <= 0.30:
		score, label = 85, "strong"
	case ratio <= 0.35:
		score, label = 70, "acceptable"
	case ratio <= 0.45:
		score, label = 50, "tight"
	default:
		score, label = 30, "high risk"
	}

	return newCategory(CategoryIncomeStrength, score,
		"Income strength is mainly based on rent affordability relative to your household income.",
		[]string{fmt.Sprintf("Rent is ~%d%% of income (%s).", pct, label)}, lookFor)
}

func (s *CategoryScorer) employmentStability(a *models.Assessment) CategoryScore {
	lookFor := []string{
		"Stable employment type (full-time tends to score highest)",
		"Longer tenure reduces perceived risk",
		"Verifiable details (employer + payslips)",
	}

	var why []string
	var score int
	switch emp := strings.ToLower(strings.TrimSpace(a.EmploymentStatus)); {
	case emp == models.EmploymentFullTime:
		score = 80
		why = append(why, "Full-time employment.")
	case emp == models.EmploymentSelfEmployed:
		score = 65
		why = append(why, "Self-employed (often requires stronger documentation).")
	case emp != "":
		score = 45
		why = append(why, fmt.Sprintf("Employment is %s (less stable).", strings.ReplaceAll(emp, "_", " ")))
	default:
		score = 20
		why = append(why, "Employment status missing.")
	}

	months := ParseMonthsInRole(a.TimeInRole)
	switch {
	case months >= 12:
		score += 15
		why = append(why, "Tenure 12+ months.")
	case months >= 6:
		score += 8
		why = append(why, "Tenure 6–11 months.")
	case months >= 1:
		score += 3
		why = append(why, "Tenure under 6 months.")
	default:
		why = append(why, "Time in role missing or invalid.")
	}

	return newCategory(CategoryEmploymentStability, score,
		"Employment stability is based on employment type and how long you've been in your role.",
		why, lookFor)
}

func (s *CategoryScorer) rentalHistory(a *models.Assessment) CategoryScore {
	lookFor := []string{
		"Previous rentals with positive references",
		"No arrears/eviction history",
		"Consistency and reliability",
	}

	var why []string
	var score int
	var explanation string
	switch rh := strings.ToLower(strings.TrimSpace(a.RentalHistory)); {
	case rh == models.RentalHistoryRentedLocally:
		score = 80
		why = append(why, "Rented locally (strong reference signal).")
		explanation = "Local rental history usually provides verifiable references."
	case rh == models.RentalHistoryOwnedHome:
		score = 75
		why = append(why, "Previously owned a home (stability signal).")
		explanation = "Ownership can signal stability, though rental references may be different."
	case rh != "":
		score = 45
		why = append(why, "Limited/non-standard rental history.")
		explanation = "Limited rental history can reduce reference strength."
	default:
		score = 30
		why = append(why, "Rental history missing.")
		explanation = "Landlords typically want a clear rental track record or strong substitutes."
	}

	if strings.TrimSpace(a.ContextIssues) != "" {
		score -= 10
		why = append(why, "Context/history issues reported.")
	}

	return newCategory(CategoryRentalHistory, score, explanation, why, lookFor)
}

func (s *CategoryScorer) documentationReadiness(a *models.Assessment) CategoryScore {
	lookFor := []string{
		"Proof of income (payslips/bank statements)",
		"ID documents",
		"References (landlord/employer)",
		"Fast, complete submission",
	}

	n := len(a.Documents)
	score := min(n*20, 80)

	var why []string
	var explanation string
	if n >= 3 {
		why = append(why, fmt.Sprintf("%d documents selected (good).", n))
		explanation = "Having key documents ready improves speed and credibility."
	} else {
		why = append(why, fmt.Sprintf("Only %d documents selected (missing items).", n))
		explanation = "Missing documents can slow approval or lower confidence."
	}

	if hasProofOfIncome(a) {
		score += 20
		why = append(why, "Proof of income selected.")
	} else {
		why = append(why, "No proof of income selected.")
	}

	return newCategory(CategoryDocumentationReadiness, score, explanation, why, lookFor)
}

func (s *CategoryScorer) overallCompetitiveness(a *models.Assessment, income, employment, rental, documents int) CategoryScore {
	lookFor := []string{
		"Affordability + stability + references",
		"Complete application with minimal friction",
		"Low perceived risk vs other applicants",
	}
	why := []string{"Target rent compared to typical rent in your chosen suburb."}

	location := 40
	if a.MonthlyRentBudget <= s.rents.MedianRent(a.Suburb) {
		location = 70
	}

	weighted := float64(income)*weightIncome +
		float64(employment)*weightEmployment +
		float64(rental)*weightRental +
		float64(documents)*weightDocuments +
		float64(location)*weightLocation
	score := int(math.RoundToEven(weighted))

	switch {
	case score >= 70:
		why = append(why, "Overall signals are competitive for typical screening.")
	case score >= 40:
		why = append(why, "Moderately competitive, fixing 1–2 gaps can improve outcomes.")
	default:
		why = append(why, "Less competitive, address key gaps before applying widely.")
	}

	return newCategory(CategoryOverallCompetitiveness, score,
		"Competitiveness estimates how strong your application looks against typical landlord screening expectations.",
		why, lookFor)
}

func hasProofOfIncome(a *models.Assessment) bool {
	poi := strings.ToLower(strings.TrimSpace(a.ProofOfIncome))
	return poi != "" && poi != models.ProofNone
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
