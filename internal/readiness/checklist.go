package readiness

import (
	"math"

	"rental-readiness-workers/internal/models"
)

// ChecklistItem reports the upload status of one artifact type.
type ChecklistItem struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Uploaded    bool   `json:"uploaded"`
	FileRef     string `json:"fileRef,omitempty"`
	ObjectID    string `json:"objectId,omitempty"`
	Type        string `json:"type"`
}

// Checklist is the presentation-only upload status report.
type Checklist struct {
	Items      []ChecklistItem `json:"checklist"`
	Completed  int             `json:"completed"`
	Total      int             `json:"total"`
	Percentage int             `json:"percentage"`
}

type checklistEntry struct {
	key, title, description, kind string
}

var checklistEntries = []checklistEntry{
	{models.ArtifactIDDocument, "ID Document", "Used to verify your identity.", "document"},
	{models.ArtifactPayslip, "Payslip", "Shows proof of income stability.", "document"},
	{models.ArtifactBankStatement, "Bank Statement", "Demonstrates financial credibility.", "document"},
	{models.ArtifactReferenceLetter, "Reference Letter", "Strengthens trust with landlord/employer.", "reference"},
	{models.ArtifactCoverLetter, "Cover Letter", "A compelling personal application letter.", "cover_letter"},
}

// ChecklistTypes lists the artifact types the checklist reports on, in order.
func ChecklistTypes() []string {
	out := make([]string, len(checklistEntries))
	for i, e := range checklistEntries {
		out[i] = e.key
	}
	return out
}

// BuildChecklist reports status from the first artifact of each type. A cover
// letter only counts once it has a file; a reference letter counts with text alone.
func BuildChecklist(first map[string]*models.Artifact) Checklist {
	items := make([]ChecklistItem, 0, len(checklistEntries))
	completed := 0

	for _, e := range checklistEntries {
		item := ChecklistItem{
			Key:         e.key,
			Title:       e.title,
			Description: e.description,
			Type:        e.kind,
		}
		if art := first[e.key]; art != nil {
			item.ObjectID = art.ID
			item.FileRef = art.FileRef
			item.Uploaded = true
			if e.key == models.ArtifactCoverLetter {
				item.Uploaded = art.HasFile()
			}
		}
		if item.Uploaded {
			completed++
		}
		items = append(items, item)
	}

	return Checklist{
		Items:      items,
		Completed:  completed,
		Total:      len(items),
		Percentage: Percentage(completed, len(items)),
	}
}

// EmptyChecklist is returned when the requester does not own the assessment.
func EmptyChecklist() Checklist {
	return Checklist{Items: []ChecklistItem{}}
}

// Percentage is round(100*completed/total), 0 when total is 0.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
