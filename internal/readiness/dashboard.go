package readiness

import (
	"math"
	"strings"

	"rental-readiness-workers/internal/models"
)

// Financials are the weekly affordability figures shown on the dashboard.
type Financials struct {
	IncomeWeekly     float64 `json:"incomeWeekly"`
	TargetRentWeekly float64 `json:"targetRentWeekly"`
	AvgRentWeekly    float64 `json:"avgRentWeekly"`
}

// WeeklyFinancials converts annual income and monthly rents to weekly figures.
// Monthly rent is divided by 4, matching how rents are quoted on the dashboard.
func WeeklyFinancials(a *models.Assessment, rents RentLookup) Financials {
	return Financials{
		IncomeWeekly:     round2(AnnualIncome(a) / 52),
		TargetRentWeekly: round2(math.Max(a.MonthlyRentBudget, 0) / 4),
		AvgRentWeekly:    round2(rents.MedianRent(a.Suburb) / 4),
	}
}

// Step is one suggested improvement surfaced on the dashboard.
type Step struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"desc"`
	Impact      int    `json:"impact"`
	ActionLabel string `json:"actionLabel"`
}

// ImprovementSteps turns the first n sorted recommendations into dashboard steps.
func ImprovementSteps(recs []models.Recommendation, n int) []Step {
	if n > len(recs) {
		n = len(recs)
	}
	steps := make([]Step, 0, n)
	for _, r := range recs[:n] {
		step := Step{
			Icon:        "📌",
			Title:       titleCase(r.Category),
			Description: r.Suggestion,
			Impact:      5,
			ActionLabel: "Fix Now",
		}
		if r.Priority == PriorityHigh {
			step.Icon = "⚠️"
			step.Impact = 8
		}
		steps = append(steps, step)
	}
	return steps
}

// BreakdownEntry is the compact key/value form of a category score.
type BreakdownEntry struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

func Breakdown(categories []CategoryScore) []BreakdownEntry {
	out := make([]BreakdownEntry, len(categories))
	for i, c := range categories {
		out[i] = BreakdownEntry{Key: c.Category, Value: c.Score}
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
