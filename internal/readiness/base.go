package readiness

import (
	"strings"

	"rental-readiness-workers/internal/models"
)

// BaseResult is what a submission-time scoring pass writes onto the assessment.
type BaseResult struct {
	Score      int      `json:"readinessScore"`
	RiskLevel  string   `json:"riskLevel"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// BaseScorer is the coarse additive heuristic run once per submission.
type BaseScorer struct {
	rents RentLookup
}

func NewBaseScorer(rents RentLookup) *BaseScorer {
	return &BaseScorer{rents: rents}
}

// Score evaluates the additive rules in order. Strengths and weaknesses are
// recorded in evaluation order; the total is clamped to [0,100].
func (s *BaseScorer) Score(a *models.Assessment) BaseResult {
	score := 0
	strengths := []string{}
	weaknesses := []string{}

	// budget vs location
	if a.MonthlyRentBudget <= s.rents.MedianRent(a.Suburb) {
		score += 20
		strengths = append(strengths, "Budget aligns with desired suburb")
	} else {
		weaknesses = append(weaknesses, "Budget exceeds typical rent in desired suburb")
	}

	switch strings.ToLower(strings.TrimSpace(a.EmploymentStatus)) {
	case models.EmploymentFullTime, models.EmploymentSelfEmployed:
		score += 20
		strengths = append(strengths, "Stable employment")
	default:
		weaknesses = append(weaknesses, "Employment stability could be improved")
	}

	switch months, ok := parseTenure(a.TimeInRole); {
	case !ok:
		weaknesses = append(weaknesses, "Time in role not provided")
	case months >= 12:
		score += 5
		strengths = append(strengths, "Tenured in current role")
	default:
		weaknesses = append(weaknesses, "Short tenure in current role")
	}

	switch strings.ToLower(strings.TrimSpace(a.RentalHistory)) {
	case models.RentalHistoryRentedLocally, models.RentalHistoryOwnedHome:
		score += 10
		strengths = append(strengths, "Positive rental history")
	default:
		weaknesses = append(weaknesses, "Limited rental history")
	}

	// affordability uses household income only
	if annual := NormalizeIncome(a.HouseholdIncome, a.HouseholdIncomePeriod); annual > 0 {
		if a.MonthlyRentBudget/(annual/12) <= 0.30 {
			score += 20
			strengths = append(strengths, "Affordable rent relative to income")
		} else {
			weaknesses = append(weaknesses, "Rent is high relative to income")
		}
	} else {
		weaknesses = append(weaknesses, "Income not provided")
	}

	n := len(a.Documents)
	score += min(n*5, 20)
	if n >= 3 {
		score += 5
		strengths = append(strengths, "Well-prepared documents")
	} else {
		weaknesses = append(weaknesses, "Insufficient documents for application")
	}

	if hasProofOfIncome(a) {
		score += 5
		strengths = append(strengths, "Proof of income provided")
	} else {
		weaknesses = append(weaknesses, "No proof of income provided")
	}

	if a.MovingWithAdults+a.MovingWithChildren <= 4 && a.MovingWithPets <= 2 {
		score += 5
		strengths = append(strengths, "Household size manageable")
	} else {
		weaknesses = append(weaknesses, "Household size may impact readiness")
	}

	if strings.TrimSpace(a.ContextIssues) != "" {
		score -= 5
		weaknesses = append(weaknesses, "History/context issues reported")
	}

	score = clamp(score, 0, 100)
	return BaseResult{
		Score:      score,
		RiskLevel:  RiskFromScore(score),
		Strengths:  strengths,
		Weaknesses: weaknesses,
	}
}

// Apply overwrites the scoring outputs on a wholesale.
func (r BaseResult) Apply(a *models.Assessment) {
	score := r.Score
	a.ReadinessScore = &score
	a.RiskLevel = r.RiskLevel
	a.Strengths = r.Strengths
	a.Weaknesses = r.Weaknesses
}
