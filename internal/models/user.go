package models

// UserProfile is the read-only slice of the account this system needs.
type UserProfile struct {
	UserID    string `json:"userId" db:"id"`
	Email     string `json:"email" db:"email"`
	Phone     string `json:"phone,omitempty" db:"phone"`
	FirstName string `json:"firstName,omitempty" db:"first_name"`
	IsPremium bool   `json:"isPremium" db:"is_premium"`
}
