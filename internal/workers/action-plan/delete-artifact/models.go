// internal/workers/action-plan/delete-artifact/models.go
package deleteartifact

type Input struct {
	UserID     string `json:"userId"`
	Type       string `json:"type"`
	ArtifactID string `json:"artifactId"`
}

// Output.FileRef is handed to the storage step that removes the blob. It is
// empty for text-only reference letters.
type Output struct {
	Deleted    bool   `json:"deleted"`
	ArtifactID string `json:"artifactId"`
	Type       string `json:"type"`
	FileRef    string `json:"fileRef,omitempty"`
}
