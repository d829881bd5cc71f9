// internal/workers/assessment/submit-assessment/models.go
package submitassessment

import "time"

// Input is the raw questionnaire. Numeric fields arrive as numbers, strings or
// null and are sanitized before scoring.
type Input struct {
	SessionKey string `json:"sessionKey"`
	UserID     string `json:"userId,omitempty"`

	FullName string      `json:"fullName"`
	Postcode string      `json:"postcode"`
	Suburb   string      `json:"suburb"`
	City     string      `json:"city"`
	Lat      interface{} `json:"lat"`
	Lon      interface{} `json:"lon"`

	MonthlyRentBudget      interface{} `json:"monthlyRentBudget"`
	HouseholdIncome        interface{} `json:"householdIncome"`
	HouseholdIncomePeriod  string      `json:"householdIncomePeriod"`
	IndividualIncome       interface{} `json:"individualIncome"`
	IndividualIncomePeriod string      `json:"individualIncomePeriod"`

	EmploymentStatus string   `json:"employmentStatus"`
	TimeInRole       string   `json:"timeInRole"`
	RentalHistory    string   `json:"rentalHistory"`
	Documents        []string `json:"documents"`
	ProofOfIncome    string   `json:"proofOfIncome"`

	MovingWithAdults   interface{} `json:"movingWithAdults"`
	MovingWithChildren interface{} `json:"movingWithChildren"`
	MovingWithPets     interface{} `json:"movingWithPets"`
	ContextIssues      string      `json:"contextIssues"`
}

type Output struct {
	AssessmentID   string    `json:"assessmentId"`
	ReadinessScore int       `json:"readinessScore"`
	RiskLevel      string    `json:"riskLevel"`
	Strengths      []string  `json:"strengths"`
	Weaknesses     []string  `json:"weaknesses"`
	CreatedAt      time.Time `json:"createdAt"`
}
