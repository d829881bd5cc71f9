package models

import "time"

// Artifact types. The first three are UserDocument types.
const (
	ArtifactIDDocument      = "id_document"
	ArtifactPayslip         = "payslip"
	ArtifactBankStatement   = "bank_statement"
	ArtifactReferenceLetter = "reference_letter"
	ArtifactCoverLetter     = "cover_letter"
)

// IsDocumentType reports whether t is stored as a UserDocument.
func IsDocumentType(t string) bool {
	switch t {
	case ArtifactIDDocument, ArtifactPayslip, ArtifactBankStatement:
		return true
	}
	return false
}

// IsArtifactType reports whether t is any known artifact type.
func IsArtifactType(t string) bool {
	return IsDocumentType(t) || t == ArtifactReferenceLetter || t == ArtifactCoverLetter
}

// Artifact is the common view of a UserDocument, ReferenceLetter or CoverLetter.
// FileRef is empty when no file was attached.
type Artifact struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"userId" db:"user_id"`
	AssessmentID string    `json:"assessmentId" db:"assessment_id"`
	Type         string    `json:"type" db:"type"`
	FileRef      string    `json:"fileRef,omitempty" db:"file_ref"`
	TextContent  string    `json:"textContent,omitempty" db:"text_content"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// HasFile reports whether a file blob is attached.
func (a *Artifact) HasFile() bool {
	return a != nil && a.FileRef != ""
}
