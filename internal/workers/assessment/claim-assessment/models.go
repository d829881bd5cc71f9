// internal/workers/assessment/claim-assessment/models.go
package claimassessment

type Input struct {
	SessionKey string `json:"sessionKey"`
	UserID     string `json:"userId"`
}

// Output.AssessmentID is empty when the session had nothing left to claim.
type Output struct {
	Claimed      bool   `json:"claimed"`
	AssessmentID string `json:"assessmentId,omitempty"`
}
