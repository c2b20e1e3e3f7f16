package validation

import (
	"errors"
	"math"
	"testing"

	"proteinbuddy/internal/ledger"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "subdomain has too many parts",
			email:   "user@mail.example.com",
			wantErr: true,
		},
		{
			name:    "domain without dot",
			email:   "user@localhost",
			wantErr: true,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "two @",
			email:   "a@b@example.com",
			wantErr: true,
		},
		{
			name:    "slash",
			email:   "te/st@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password exactly 4 characters",
			password: "pass",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "abc",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateGoal(t *testing.T) {
	tests := []struct {
		name    string
		goal    float64
		wantErr bool
	}{
		{name: "zero", goal: 0},
		{name: "typical", goal: 120},
		{name: "upper bound", goal: 200},
		{name: "negative", goal: -1, wantErr: true},
		{name: "too high", goal: 200.5, wantErr: true},
		{name: "not a number", goal: math.NaN(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGoal(tt.goal)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGoal(%v) error = %v, wantErr %v", tt.goal, err, tt.wantErr)
			}
			var validationErr *ledger.ValidationError
			if err != nil && !errors.As(err, &validationErr) {
				t.Errorf("expected a ValidationError, got %T", err)
			}
		})
	}
}
