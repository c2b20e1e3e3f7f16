package models

import "time"

// Session is a logged-in session for an account.
// StartingIntake and GoalCelebrated carry the goal celebration state for the session.
type Session struct {
	ID             string
	Email          string
	StartingIntake float64
	GoalCelebrated bool
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
