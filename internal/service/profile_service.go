package service

import (
	"context"
	"errors"

	"proteinbuddy/internal/ledger"
	"proteinbuddy/internal/models"
	"proteinbuddy/internal/repository"
	"proteinbuddy/internal/validation"
)

// Profile is an account's settings and today's intake
type Profile struct {
	Email       string  `json:"email"`
	ProteinGoal float64 `json:"protein_goal"`
	TodayIntake float64 `json:"today_intake"`
}

// ProfileService manages the protein goal
type ProfileService struct {
	accountRepo *repository.AccountRepository
	ledger      *ledger.Ledger
}

// NewProfileService creates a new profile service
func NewProfileService(accountRepo *repository.AccountRepository, ledger *ledger.Ledger) *ProfileService {
	return &ProfileService{accountRepo: accountRepo, ledger: ledger}
}

// Profile returns the account's goal and today's total
func (s *ProfileService) Profile(ctx context.Context, email string, today models.Day) (*Profile, error) {
	account, err := s.accountRepo.GetAccount(ctx, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, &ledger.StorageError{Op: "get account", Err: err}
	}

	snapshot, err := s.ledger.TodaySnapshot(ctx, email, today)
	if err != nil {
		return nil, err
	}

	return &Profile{
		Email:       account.Email,
		ProteinGoal: account.ProteinGoal,
		TodayIntake: snapshot.TotalIntake,
	}, nil
}

// SetGoal changes the daily protein goal
func (s *ProfileService) SetGoal(ctx context.Context, email string, goal float64) error {
	if err := validation.ValidateGoal(goal); err != nil {
		return err
	}

	err := s.accountRepo.SetGoal(ctx, email, models.RoundGrams(goal))
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ledger.ErrAccountNotFound
	}
	if err != nil {
		return &ledger.StorageError{Op: "set goal", Err: err}
	}
	return nil
}
