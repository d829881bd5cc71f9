// internal/workers/action-plan/record-artifact/models.go
package recordartifact

// Input describes an uploaded artifact. FileRef points at a blob that the
// upload flow has already stored; this worker never touches file contents.
type Input struct {
	UserID       string `json:"userId"`
	AssessmentID string `json:"assessmentId"`
	Type         string `json:"type"`
	FileRef      string `json:"fileRef,omitempty"`
	TextContent  string `json:"textContent,omitempty"`
}

type Output struct {
	ArtifactID string `json:"artifactId"`
	Type       string `json:"type"`
	TaskKey    string `json:"taskKey,omitempty"`
	Awarded    bool   `json:"awarded"`
	FinalScore int    `json:"finalScore"`
}
