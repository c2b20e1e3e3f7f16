// Package validation checks account input before it reaches the store.
package validation

import (
	"math"
	"strings"

	"proteinbuddy/internal/ledger"
)

// Password and goal bounds
const (
	MinPasswordLength = 4
	MinGoal           = 0
	MaxGoal           = 200
)

// ValidateEmail accepts an address with exactly one "@" whose domain has
// exactly two dot-separated parts and which contains no "/"
func ValidateEmail(email string) error {
	if email == "" {
		return &ledger.ValidationError{Field: "email", Message: "email is required"}
	}
	if strings.Count(email, "@") != 1 || strings.Contains(email, "/") {
		return &ledger.ValidationError{Field: "email", Message: "invalid email"}
	}

	_, domain, _ := strings.Cut(email, "@")
	if len(strings.Split(domain, ".")) != 2 {
		return &ledger.ValidationError{Field: "email", Message: "invalid email"}
	}
	return nil
}

// ValidatePassword checks the minimum password length
func ValidatePassword(password string) error {
	if password == "" {
		return &ledger.ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinPasswordLength {
		return &ledger.ValidationError{Field: "password", Message: "password must be at least 4 characters"}
	}
	return nil
}

// ValidateGoal checks a daily protein goal in grams
func ValidateGoal(goal float64) error {
	if math.IsNaN(goal) || goal < MinGoal || goal > MaxGoal {
		return &ledger.ValidationError{Field: "protein_goal", Message: "goal must be between 0 and 200 grams"}
	}
	return nil
}
