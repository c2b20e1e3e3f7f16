package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"proteinbuddy/internal/database"
	"proteinbuddy/internal/models"
)

// SessionRepository persists login sessions and their goal celebration state
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession stores a new session
func (r *SessionRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, email, starting_intake, goal_celebrated, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Conn(ctx).ExecContext(ctx, query,
		session.ID,
		session.Email,
		session.StartingIntake,
		session.GoalCelebrated,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID. A missing session returns nil, nil.
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `
		SELECT id, email, starting_intake, goal_celebrated, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`
	session := &models.Session{}
	err := r.db.Conn(ctx).QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.Email,
		&session.StartingIntake,
		&session.GoalCelebrated,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// UpdateGoalCelebrated records whether the session has shown the goal celebration
func (r *SessionRepository) UpdateGoalCelebrated(ctx context.Context, sessionID string, celebrated bool) error {
	query := "UPDATE sessions SET goal_celebrated = ? WHERE id = ?"
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, celebrated, sessionID); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// DeleteSession removes a session from the database
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	query := "DELETE FROM sessions WHERE id = ?"
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	query := "DELETE FROM sessions WHERE expires_at < ?"
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
