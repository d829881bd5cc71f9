package models

import "time"

// Income periods.
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAnnual  = "annual"
)

// Employment statuses.
const (
	EmploymentFullTime     = "full_time"
	EmploymentPartTime     = "part_time"
	EmploymentSelfEmployed = "self_employed"
	EmploymentStudent      = "student"
	EmploymentRetired      = "retired"
)

// Rental history values.
const (
	RentalHistoryRentedLocally   = "rented_locally"
	RentalHistoryRentedOverseas  = "rented_overseas"
	RentalHistoryFirstTimeRenter = "first_time_renter"
	RentalHistoryOwnedHome       = "owned_home"
)

// Proof of income values.
const (
	ProofRecentPayslip  = "recent_payslip"
	ProofBankStatements = "bank_statements"
	ProofNone           = "none"
)

// Risk tiers.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Assessment is one applicant snapshot plus the outputs of the last scoring pass.
type Assessment struct {
	ID         string  `json:"id" db:"id"`
	UserID     *string `json:"userId,omitempty" db:"user_id"`
	SessionKey string  `json:"sessionKey" db:"session_key"`

	FullName string   `json:"fullName" db:"full_name"`
	Postcode string   `json:"postcode" db:"postcode"`
	Suburb   string   `json:"suburb" db:"suburb"`
	City     string   `json:"city" db:"city"`
	Lat      *float64 `json:"lat,omitempty" db:"lat"`
	Lon      *float64 `json:"lon,omitempty" db:"lon"`

	MonthlyRentBudget      float64 `json:"monthlyRentBudget" db:"monthly_rent_budget"`
	HouseholdIncome        float64 `json:"householdIncome" db:"household_income"`
	HouseholdIncomePeriod  string  `json:"householdIncomePeriod" db:"household_income_period"`
	IndividualIncome       float64 `json:"individualIncome" db:"individual_income"`
	IndividualIncomePeriod string  `json:"individualIncomePeriod" db:"individual_income_period"`

	EmploymentStatus string `json:"employmentStatus" db:"employment_status"`
	TimeInRole       string `json:"timeInRole" db:"time_in_role"`
	RentalHistory    string `json:"rentalHistory" db:"rental_history"`

	Documents     []string `json:"documents" db:"documents"`
	ProofOfIncome string   `json:"proofOfIncome" db:"proof_of_income"`

	MovingWithAdults   int    `json:"movingWithAdults" db:"moving_with_adults"`
	MovingWithChildren int    `json:"movingWithChildren" db:"moving_with_children"`
	MovingWithPets     int    `json:"movingWithPets" db:"moving_with_pets"`
	ContextIssues      string `json:"contextIssues" db:"context_issues"`

	ReadinessScore  *int              `json:"readinessScore,omitempty" db:"readiness_score"`
	RiskLevel       string            `json:"riskLevel" db:"risk_level"`
	Strengths       []string          `json:"strengths" db:"strengths"`
	Weaknesses      []string          `json:"weaknesses" db:"weaknesses"`
	GapAnalysis     map[string]string `json:"gapAnalysis,omitempty" db:"gap_analysis"`
	Recommendations []Recommendation  `json:"recommendations,omitempty" db:"recommendations"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// OwnedBy reports whether userID owns the assessment.
func (a *Assessment) OwnedBy(userID string) bool {
	return a.UserID != nil && userID != "" && *a.UserID == userID
}

// BaseScore is the persisted readiness score, 0 when the assessment was never scored.
func (a *Assessment) BaseScore() int {
	if a.ReadinessScore == nil {
		return 0
	}
	return *a.ReadinessScore
}

// Recommendation is one prioritized improvement suggestion.
type Recommendation struct {
	Category   string `json:"category"`
	Priority   string `json:"priority"`
	Suggestion string `json:"suggestion"`
}
