// internal/workers/action-plan/build-document-checklist/models.go
package builddocumentchecklist

import "rental-readiness-workers/internal/readiness"

type Input struct {
	UserID       string `json:"userId"`
	AssessmentID string `json:"assessmentId"`
}

type Output struct {
	readiness.Checklist
}
