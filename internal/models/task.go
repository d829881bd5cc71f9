package models

import "time"

// CompletedTask records a task awarded once for an assessment.
type CompletedTask struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"userId" db:"user_id"`
	AssessmentID  string    `json:"assessmentId" db:"assessment_id"`
	TaskKey       string    `json:"taskKey" db:"task_key"`
	PointsAwarded int       `json:"pointsAwarded" db:"points_awarded"`
	CompletedAt   time.Time `json:"completedAt" db:"completed_at"`
}
