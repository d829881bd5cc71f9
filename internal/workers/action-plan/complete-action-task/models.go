// internal/workers/action-plan/complete-action-task/models.go
package completeactiontask

type Input struct {
	UserID       string `json:"userId"`
	AssessmentID string `json:"assessmentId"`
	TaskKey      string `json:"taskKey"`
}

// Output.Awarded is false when the task had already been completed; in that
// case PointsAwarded is 0.
type Output struct {
	TaskKey          string `json:"taskKey"`
	Awarded          bool   `json:"awarded"`
	PointsAwarded    int    `json:"pointsAwarded"`
	ImprovementScore int    `json:"improvementScore"`
	FinalScore       int    `json:"finalScore"`
}
