// internal/workers/analysis/detailed-readiness-analysis/models.go
package detailedreadinessanalysis

import (
	"time"

	"rental-readiness-workers/internal/models"
	"rental-readiness-workers/internal/readiness"
)

type Input struct {
	UserID       string `json:"userId"`
	AssessmentID string `json:"assessmentId,omitempty"`
}

type PreviousAssessment struct {
	ID        string `json:"id"`
	Score     int    `json:"score"`
	RiskLevel string `json:"riskLevel"`
	DaysAgo   int    `json:"daysAgo"`
	CreatedAt string `json:"createdAt"`
}

type Activity struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"desc"`
	When        string `json:"when"`
}

// Output is the dashboard payload. Score is always the final score; ScorePrev
// is the base score of the newest other assessment.
type Output struct {
	AssessmentID   string     `json:"assessmentId,omitempty"`
	Score          int        `json:"score"`
	ScorePrev      int        `json:"scorePrev"`
	RiskLevel      string     `json:"riskLevel"`
	LastAssessment *time.Time `json:"lastAssessment,omitempty"`

	UserName string `json:"userName"`
	Postcode string `json:"postcode"`
	Suburb   string `json:"suburb"`

	IncomeWeekly     float64 `json:"incomeWeekly"`
	TargetRentWeekly float64 `json:"targetRentWeekly"`
	AvgRentWeekly    float64 `json:"avgRentWeekly"`

	Breakdown  []readiness.BreakdownEntry `json:"breakdown"`
	Categories []readiness.CategoryScore  `json:"categories"`

	Gaps            map[string]string       `json:"gaps"`
	Recommendations []models.Recommendation `json:"recommendations"`

	PreviousAssessments []PreviousAssessment `json:"previousAssessments"`
	Steps               []readiness.Step     `json:"steps"`
	Activity            []Activity           `json:"activity"`

	IsPremium bool `json:"isPremium"`
}
