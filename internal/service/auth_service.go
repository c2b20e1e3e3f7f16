package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"proteinbuddy/internal/ledger"
	"proteinbuddy/internal/models"
	"proteinbuddy/internal/repository"
	"proteinbuddy/internal/security"
	"proteinbuddy/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// AuthService handles sign-up, login and the sessions that carry the goal
// celebration state
type AuthService struct {
	accountRepo     *repository.AccountRepository
	sessionRepo     *repository.SessionRepository
	ledger          *ledger.Ledger
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(accountRepo *repository.AccountRepository, sessionRepo *repository.SessionRepository, ledger *ledger.Ledger, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		accountRepo:     accountRepo,
		sessionRepo:     sessionRepo,
		ledger:          ledger,
		sessionDuration: sessionDuration,
	}
}

// Register creates an account with a zero goal and today's log seeded, then
// logs the new user in
func (s *AuthService) Register(ctx context.Context, email, password string, today models.Day) (*models.Session, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.accountRepo.CreateAccount(ctx, email, passwordHash, today)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, &ledger.StorageError{Op: "create account", Err: err}
	}

	log.Printf("Account created: %s", email)
	return s.startSession(ctx, email, today)
}

// Login checks the password and starts a session. An unknown email returns
// ledger.ErrAccountNotFound so the caller can suggest signing up.
func (s *AuthService) Login(ctx context.Context, email, password string, today models.Day) (*models.Session, error) {
	account, err := s.accountRepo.GetAccount(ctx, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, &ledger.StorageError{Op: "get account", Err: err}
	}

	if !security.CheckPassword(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, email, today)
}

func (s *AuthService) startSession(ctx context.Context, email string, today models.Day) (*models.Session, error) {
	session, err := s.ledger.BeginSession(ctx, email, today)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.ID = security.GenerateSessionID()
	session.CreatedAt = now
	session.ExpiresAt = now.Add(s.sessionDuration)

	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, &ledger.StorageError{Op: "create session", Err: err}
	}
	return session, nil
}

// ValidateSession returns the live session for sessionID
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		if err := s.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
			log.Printf("Warning: failed to delete expired session: %v", err)
		}
		return nil, ErrSessionExpired
	}

	return session, nil
}

// SaveSession persists the session's celebration flag
func (s *AuthService) SaveSession(ctx context.Context, session *models.Session) error {
	if err := s.sessionRepo.UpdateGoalCelebrated(ctx, session.ID, session.GoalCelebrated); err != nil {
		return &ledger.StorageError{Op: "save session", Err: err}
	}
	return nil
}

// Logout invalidates a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.sessionRepo.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return count, nil
}

// ChangePassword replaces the password after checking the current one. The
// new password must differ from the current one.
func (s *AuthService) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	account, err := s.accountRepo.GetAccount(ctx, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ledger.ErrAccountNotFound
	}
	if err != nil {
		return &ledger.StorageError{Op: "get account", Err: err}
	}

	if !security.CheckPassword(currentPassword, account.PasswordHash) {
		return &ledger.ValidationError{Field: "current_password", Message: "incorrect password"}
	}
	if newPassword == currentPassword {
		return &ledger.ValidationError{Field: "new_password", Message: "new password must be different from the current password"}
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accountRepo.SetPassword(ctx, email, passwordHash); err != nil {
		return &ledger.StorageError{Op: "set password", Err: err}
	}

	log.Printf("Password changed: %s", email)
	return nil
}
