package readiness

import "rental-readiness-workers/internal/models"

// RequirementKind tags which evaluation context a task requirement reads.
type RequirementKind string

const (
	// RequirementArtifactMissing holds while no qualifying artifact of ArtifactType exists.
	RequirementArtifactMissing RequirementKind = "artifact_missing"
	// RequirementCategoryBelow holds while the Category score is under Threshold.
	RequirementCategoryBelow RequirementKind = "category_below"
)

// Requirement is the still-needed condition of a task.
type Requirement struct {
	Kind         RequirementKind
	ArtifactType string
	Category     string
	Threshold    int
}

// TaskDefinition is a catalog entry.
type TaskDefinition struct {
	Key          string
	Title        string
	Description  string
	Points       int
	Type         string
	DocumentType string
	Requirement  Requirement
}

// Task is a generated action plan item.
type Task struct {
	Key          string `json:"key"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Points       int    `json:"points"`
	Type         string `json:"type"`
	DocumentType string `json:"documentType,omitempty"`
}

// Task keys.
const (
	TaskUploadPayslip              = "upload_payslip"
	TaskUploadBankStatement        = "upload_bank_statement"
	TaskAddReferenceLetter         = "add_reference_letter"
	TaskImproveCoverLetter         = "improve_cover_letter"
	TaskImproveIncomeStrength      = "improve_income_strength"
	TaskImproveEmploymentStability = "improve_employment_stability"
	TaskImproveRentalHistory       = "improve_rental_history"
	TaskImproveCompetitiveness     = "improve_competitiveness"
)

var catalog = []TaskDefinition{
	{
		Key:          TaskUploadPayslip,
		Title:        "Upload Payslip",
		Description:  "Upload a recent payslip to strengthen income proof.",
		Points:       5,
		Type:         "document",
		DocumentType: models.ArtifactPayslip,
		Requirement:  Requirement{Kind: RequirementArtifactMissing, ArtifactType: models.ArtifactPayslip},
	},
	{
		Key:          TaskUploadBankStatement,
		Title:        "Upload Bank Statement",
		Description:  "Provide bank statement for financial credibility.",
		Points:       2,
		Type:         "document",
		DocumentType: models.ArtifactBankStatement,
		Requirement:  Requirement{Kind: RequirementArtifactMissing, ArtifactType: models.ArtifactBankStatement},
	},
	{
		Key:         TaskAddReferenceLetter,
		Title:       "Upload Reference Letter",
		Description: "Upload a landlord or employer reference letter.",
		Points:      3,
		Type:        "reference",
		Requirement: Requirement{Kind: RequirementArtifactMissing, ArtifactType: models.ArtifactReferenceLetter},
	},
	{
		Key:         TaskImproveCoverLetter,
		Title:       "Upload Cover Letter",
		Description: "Upload your rental cover letter as a PDF.",
		Points:      4,
		Type:        "cover_letter",
		Requirement: Requirement{Kind: RequirementArtifactMissing, ArtifactType: models.ArtifactCoverLetter},
	},
	{
		Key:         TaskImproveIncomeStrength,
		Title:       "Strengthen Income Position",
		Description: "Add a guarantor or extra proof of income to offset a high rent-to-income ratio.",
		Points:      6,
		Type:        "strategic",
		Requirement: Requirement{Kind: RequirementCategoryBelow, Category: CategoryIncomeStrength, Threshold: 50},
	},
	{
		Key:         TaskImproveEmploymentStability,
		Title:       "Evidence Employment Stability",
		Description: "Attach an employment contract or employer letter confirming your role and tenure.",
		Points:      5,
		Type:        "strategic",
		Requirement: Requirement{Kind: RequirementCategoryBelow, Category: CategoryEmploymentStability, Threshold: 60},
	},
	{
		Key:         TaskImproveRentalHistory,
		Title:       "Back Up Rental History",
		Description: "Provide a prior landlord, character or employer reference.",
		Points:      5,
		Type:        "strategic",
		Requirement: Requirement{Kind: RequirementCategoryBelow, Category: CategoryRentalHistory, Threshold: 60},
	},
	{
		Key:         TaskImproveCompetitiveness,
		Title:       "Improve Overall Competitiveness",
		Description: "Review your budget against local rents and close your highest-priority gaps.",
		Points:      4,
		Type:        "strategic",
		Requirement: Requirement{Kind: RequirementCategoryBelow, Category: CategoryOverallCompetitiveness, Threshold: 50},
	},
}

// artifact type -> task completed by recording it
var artifactTasks = map[string]string{
	models.ArtifactPayslip:         TaskUploadPayslip,
	models.ArtifactBankStatement:   TaskUploadBankStatement,
	models.ArtifactReferenceLetter: TaskAddReferenceLetter,
	models.ArtifactCoverLetter:     TaskImproveCoverLetter,
}

// Catalog returns a copy of the task catalog in display order.
func Catalog() []TaskDefinition {
	out := make([]TaskDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// LookupTask finds a catalog entry by key.
func LookupTask(key string) (TaskDefinition, bool) {
	for _, def := range catalog {
		if def.Key == key {
			return def, true
		}
	}
	return TaskDefinition{}, false
}

// TaskForArtifact returns the task key an artifact upload completes, if any.
func TaskForArtifact(artifactType string) (string, bool) {
	key, ok := artifactTasks[artifactType]
	return key, ok
}

// TrackedArtifacts lists the artifact types some task requirement depends on,
// in catalog order.
func TrackedArtifacts() []string {
	var out []string
	for _, def := range catalog {
		if def.Requirement.Kind == RequirementArtifactMissing {
			out = append(out, def.Requirement.ArtifactType)
		}
	}
	return out
}

// TaskContext is the state a task requirement is evaluated against.
// Artifacts holds artifact types that already satisfy their requirement
// (reference and cover letters only count with a file attached).
type TaskContext struct {
	Artifacts      map[string]bool
	CategoryScores map[string]int
	Completed      map[string]bool
}

// StillNeeded evaluates r against ctx.
func (r Requirement) StillNeeded(ctx TaskContext) bool {
	switch r.Kind {
	case RequirementArtifactMissing:
		return !ctx.Artifacts[r.ArtifactType]
	case RequirementCategoryBelow:
		score, ok := ctx.CategoryScores[r.Category]
		return ok && score < r.Threshold
	default:
		return false
	}
}

// GenerateTasks lists every catalog task whose requirement still holds and whose
// key has not been completed.
func GenerateTasks(ctx TaskContext) []Task {
	tasks := []Task{}
	for _, def := range catalog {
		if ctx.Completed[def.Key] || !def.Requirement.StillNeeded(ctx) {
			continue
		}
		tasks = append(tasks, Task{
			Key:          def.Key,
			Title:        def.Title,
			Description:  def.Description,
			Points:       def.Points,
			Type:         def.Type,
			DocumentType: def.DocumentType,
		})
	}
	return tasks
}

// FinalScore adds the improvement score to base for premium users, capped at 100.
func FinalScore(base, improvement int, premium bool) int {
	base = clamp(base, 0, 100)
	if !premium {
		return base
	}
	if improvement < 0 {
		improvement = 0
	}
	return min(base+improvement, 100)
}

// ActionPlan is the generated task list with its score summary.
type ActionPlan struct {
	AssessmentID     string `json:"assessmentId,omitempty"`
	Tasks            []Task `json:"tasks"`
	BaseScore        int    `json:"baseScore"`
	ImprovementScore int    `json:"improvementScore"`
	FinalScore       int    `json:"finalScore"`
}

// EmptyActionPlan is returned when the user has no assessment.
func EmptyActionPlan() ActionPlan {
	return ActionPlan{Tasks: []Task{}}
}
