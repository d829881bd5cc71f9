// internal/workers/action-plan/generate-action-plan/models.go
package generateactionplan

import "rental-readiness-workers/internal/readiness"

type Input struct {
	UserID       string `json:"userId"`
	AssessmentID string `json:"assessmentId,omitempty"`
}

type Output struct {
	readiness.ActionPlan
	IsPremium bool `json:"isPremium"`
}
