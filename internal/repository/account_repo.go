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

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDayNotFound     = errors.New("day not found")
	ErrDuplicateEmail  = errors.New("email already exists")
)

// AccountRepository handles database operations for accounts and their day logs.
// Every method joins the transaction carried by ctx when there is one.
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// InTx runs fn as a single transaction
func (r *AccountRepository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.InTx(ctx, fn)
}

// CreateAccount inserts a new account with a zero goal and seeds the given day
// with an empty log
func (r *AccountRepository) CreateAccount(ctx context.Context, email, passwordHash string, today models.Day) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		exists, err := r.accountExists(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateEmail
		}

		query := `
			INSERT INTO accounts (email, password_hash, protein_goal, created_at, updated_at)
			VALUES (?, ?, 0, ?, ?)
		`
		now := time.Now()
		if _, err := r.db.Conn(ctx).ExecContext(ctx, query, email, passwordHash, now, now); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		return r.TouchDay(ctx, email, today)
	})
}

// GetAccount retrieves an account by email address
func (r *AccountRepository) GetAccount(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT email, password_hash, protein_goal, created_at, updated_at
		FROM accounts
		WHERE email = ?
	`
	account := &models.Account{}
	err := r.db.Conn(ctx).QueryRowContext(ctx, query, email).Scan(
		&account.Email,
		&account.PasswordHash,
		&account.ProteinGoal,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// SetGoal updates an account's protein goal
func (r *AccountRepository) SetGoal(ctx context.Context, email string, goal float64) error {
	query := `
		UPDATE accounts
		SET protein_goal = ?, updated_at = ?
		WHERE email = ?
	`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, goal, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to set goal: %w", err)
	}
	return r.requireAccount(ctx, result, email)
}

// SetPassword replaces an account's password hash
func (r *AccountRepository) SetPassword(ctx context.Context, email, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = ?, updated_at = ?
		WHERE email = ?
	`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, passwordHash, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	return r.requireAccount(ctx, result, email)
}

// GetDay retrieves one day's log with all of its entries
func (r *AccountRepository) GetDay(ctx context.Context, email string, day models.Day) (*models.DayLog, error) {
	conn := r.db.Conn(ctx)

	var total sql.NullFloat64
	query := "SELECT total_intake FROM day_logs WHERE email = ? AND day = ?"
	err := conn.QueryRowContext(ctx, query, email, string(day)).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get day: %w", err)
	}

	dayLog := &models.DayLog{
		Email:   email,
		Day:     day,
		Entries: make(map[string]float64),
	}
	if total.Valid {
		t := models.RoundGrams(total.Float64)
		dayLog.TotalIntake = &t
	}

	query = "SELECT food_key, amount FROM day_entries WHERE email = ? AND day = ?"
	rows, err := conn.QueryContext(ctx, query, email, string(day))
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var amount float64
		if err := rows.Scan(&key, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		dayLog.Entries[key] = models.RoundGrams(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	return dayLog, nil
}

// DayTotals returns the persisted totals of the days logged between from and
// to inclusive. Days without a log are absent from the map; a total that was
// never written reads as 0.
func (r *AccountRepository) DayTotals(ctx context.Context, email string, from, to models.Day) (map[models.Day]float64, error) {
	query := `
		SELECT day, COALESCE(total_intake, 0)
		FROM day_logs
		WHERE email = ? AND day >= ? AND day <= ?
	`
	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, email, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query day totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[models.Day]float64)
	for rows.Next() {
		var day string
		var total float64
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("failed to scan day total: %w", err)
		}
		totals[models.Day(day)] = models.RoundGrams(total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read day totals: %w", err)
	}

	return totals, nil
}

// TouchDay creates an empty log for the day unless one already exists
func (r *AccountRepository) TouchDay(ctx context.Context, email string, day models.Day) error {
	query := r.db.Dialect.InsertDayIfAbsentQuery()
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, email, string(day), 0.0); err != nil {
		return fmt.Errorf("failed to touch day: %w", err)
	}
	return nil
}

// UpsertEntry adds delta to a food's amount for the day, creating the entry if needed
func (r *AccountRepository) UpsertEntry(ctx context.Context, email string, day models.Day, foodKey string, delta float64) error {
	query := r.db.Dialect.UpsertEntryQuery()
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, email, string(day), foodKey, delta); err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

// DeleteEntry removes a food from the day. Deleting an absent food is a no-op.
func (r *AccountRepository) DeleteEntry(ctx context.Context, email string, day models.Day, foodKey string) error {
	query := "DELETE FROM day_entries WHERE email = ? AND day = ? AND food_key = ?"
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, email, string(day), foodKey); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// SetDayTotal writes the day's total intake
func (r *AccountRepository) SetDayTotal(ctx context.Context, email string, day models.Day, total float64) error {
	conn := r.db.Conn(ctx)
	query := "UPDATE day_logs SET total_intake = ? WHERE email = ? AND day = ?"
	result, err := conn.ExecContext(ctx, query, total, email, string(day))
	if err != nil {
		return fmt.Errorf("failed to set day total: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the value is unchanged
	var count int
	query = "SELECT COUNT(*) FROM day_logs WHERE email = ? AND day = ?"
	if err := conn.QueryRowContext(ctx, query, email, string(day)).Scan(&count); err != nil {
		return fmt.Errorf("failed to check day: %w", err)
	}
	if count == 0 {
		return ErrDayNotFound
	}
	return nil
}

// requireAccount turns a zero-row update into ErrAccountNotFound when the
// account really is missing
func (r *AccountRepository) requireAccount(ctx context.Context, result sql.Result, email string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows > 0 {
		return nil
	}

	exists, err := r.accountExists(ctx, email)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) accountExists(ctx context.Context, email string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM accounts WHERE email = ?"
	if err := r.db.Conn(ctx).QueryRowContext(ctx, query, email).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}
	return count > 0, nil
}
