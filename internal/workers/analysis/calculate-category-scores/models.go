// internal/workers/analysis/calculate-category-scores/models.go
package calculatecategoryscores

import (
	"time"

	"rental-readiness-workers/internal/readiness"
)

// Input selects the mode: with AssessmentID the premium breakdown of that
// assessment, otherwise the list of the user's (or the session's) assessments.
type Input struct {
	UserID       string `json:"userId"`
	SessionKey   string `json:"sessionKey"`
	AssessmentID string `json:"assessmentId"`
}

type Summary struct {
	ID                string    `json:"id"`
	FullName          string    `json:"fullName"`
	CreatedAt         time.Time `json:"createdAt"`
	MonthlyRentBudget float64   `json:"monthlyRentBudget"`
	Postcode          string    `json:"postcode"`
	Score             int       `json:"score"`
	RiskLevel         string    `json:"riskLevel"`
}

type Output struct {
	// breakdown mode
	AssessmentID   string                    `json:"assessmentId,omitempty"`
	CreatedAt      *time.Time                `json:"createdAt,omitempty"`
	Categories     []readiness.CategoryScore `json:"categories,omitempty"`
	ReadinessScore *int                      `json:"readinessScore,omitempty"`
	RiskLevel      string                    `json:"riskLevel,omitempty"`

	// list mode
	Assessments []Summary `json:"assessments,omitempty"`
	Count       *int      `json:"count,omitempty"`
}
