package submitassessment

import "rental-readiness-workers/internal/common/validation"

// Enumerated fields stay free-form: unknown values are scored, not rejected.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:                 "object",
		Required:             []string{"sessionKey"},
		AdditionalProperties: true,
		Properties: map[string]validation.Property{
			"sessionKey": {
				Type:        "string",
				Description: "Anonymous session the assessment is submitted under",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(100),
			},
			"userId":                 nullableString("Owner when the submitter is signed in", 64),
			"fullName":               nullableString("Applicant name", 200),
			"postcode":               nullableString("Postcode of the target area", 10),
			"suburb":                 nullableString("Target suburb", 100),
			"city":                   nullableString("Target city", 100),
			"lat":                    looseNumber("Latitude"),
			"lon":                    looseNumber("Longitude"),
			"monthlyRentBudget":      looseNumber("Target monthly rent"),
			"householdIncome":        looseNumber("Household income for the period"),
			"householdIncomePeriod":  nullableString("weekly, monthly or annual", 20),
			"individualIncome":       looseNumber("Individual income for the period"),
			"individualIncomePeriod": nullableString("weekly, monthly or annual", 20),
			"employmentStatus":       nullableString("Employment status", 50),
			"timeInRole":             nullableString("Tenure as \"<n> <unit>\"", 50),
			"rentalHistory":          nullableString("Rental history", 50),
			"documents": {
				AnyOf: []validation.Property{
					{Type: "array", Items: &validation.Property{Type: "string", MaxLength: validation.Int(50)}},
					{Type: "null"},
				},
				Description: "Document tags the applicant holds",
			},
			"proofOfIncome":      nullableString("Proof of income type", 50),
			"movingWithAdults":   looseNumber("Adults moving in"),
			"movingWithChildren": looseNumber("Children moving in"),
			"movingWithPets":     looseNumber("Pets moving in"),
			"contextIssues":      nullableString("History or context issues", 2000),
		},
	}
}

func looseNumber(description string) validation.Property {
	return validation.Property{
		AnyOf: []validation.Property{
			{Type: "number"},
			{Type: "string", MaxLength: validation.Int(32)},
			{Type: "null"},
		},
		Description: description,
	}
}

func nullableString(description string, maxLength int) validation.Property {
	return validation.Property{
		AnyOf: []validation.Property{
			{Type: "string", MaxLength: validation.Int(maxLength)},
			{Type: "null"},
		},
		Description: description,
	}
}
