package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"proteinbuddy/internal/database"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string          `json:"version"`
	ExportedAt   time.Time       `json:"exported_at"`
	DatabaseType string          `json:"database_type"`
	Accounts     []AccountBackup `json:"accounts"`
}

// AccountBackup is an account with all of its day logs
type AccountBackup struct {
	Email        string      `json:"email"`
	PasswordHash string      `json:"password_hash"`
	ProteinGoal  float64     `json:"protein_goal"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Days         []DayBackup `json:"days"`
}

// DayBackup is one day log. A nil total was never written.
type DayBackup struct {
	Day         string             `json:"day"`
	TotalIntake *float64           `json:"total_intake"`
	Entries     map[string]float64 `json:"entries"`
}

// ImportResult counts what an import wrote
type ImportResult struct {
	Accounts int
	Skipped  int
	Days     int
	Entries  int
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
	fs afero.Fs
}

// NewBackupService creates a new backup service reading and writing files on fs
func NewBackupService(db *database.DB, fs afero.Fs) *BackupService {
	return &BackupService{db: db, fs: fs}
}

// Export writes a complete backup of the database to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) (*BackupData, error) {
	log.Println("Starting database export...")

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := s.fs.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(ctx, file)
	if err != nil {
		return nil, err
	}

	log.Printf("Database exported successfully to %s (%d accounts)", outputPath, len(backup.Accounts))
	return backup, nil
}

// ExportToWriter encodes a complete backup of the database to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now(),
		DatabaseType: "universal",
	}

	if err := s.exportAccounts(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to export accounts: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Import restores a backup file. Accounts that already exist are skipped.
func (s *BackupService) Import(ctx context.Context, inputPath string) (*ImportResult, error) {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := s.fs.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup read from r in a single transaction
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	result := &ImportResult{}
	err := s.db.InTx(ctx, func(ctx context.Context) error {
		for _, account := range backup.Accounts {
			imported, err := s.importAccount(ctx, account, result)
			if err != nil {
				return fmt.Errorf("failed to import account %s: %w", account.Email, err)
			}
			if !imported {
				log.Printf("Skipping existing account %s", account.Email)
				result.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Import completed: %d accounts, %d days, %d entries, %d skipped",
		result.Accounts, result.Days, result.Entries, result.Skipped)
	return result, nil
}

// Clear deletes every account, day log and session
func (s *BackupService) Clear(ctx context.Context) error {
	// Reverse order of dependencies
	tables := []string{"day_entries", "day_logs", "sessions", "accounts"}

	return s.db.InTx(ctx, func(ctx context.Context) error {
		for _, table := range tables {
			query := fmt.Sprintf("DELETE FROM %s", table)
			if _, err := s.db.Conn(ctx).ExecContext(ctx, query); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			log.Printf("Cleared table: %s", table)
		}
		return nil
	})
}

func (s *BackupService) exportAccounts(ctx context.Context, backup *BackupData) error {
	conn := s.db.Conn(ctx)

	rows, err := conn.QueryContext(ctx, "SELECT email, password_hash, protein_goal, created_at, updated_at FROM accounts ORDER BY email")
	if err != nil {
		return err
	}
	byEmail := make(map[string]*AccountBackup)
	for rows.Next() {
		var a AccountBackup
		if err := rows.Scan(&a.Email, &a.PasswordHash, &a.ProteinGoal, &a.CreatedAt, &a.UpdatedAt); err != nil {
			rows.Close()
			return err
		}
		backup.Accounts = append(backup.Accounts, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range backup.Accounts {
		byEmail[backup.Accounts[i].Email] = &backup.Accounts[i]
	}

	dayIndex := make(map[string]map[string]int)
	rows, err = conn.QueryContext(ctx, "SELECT email, day, total_intake FROM day_logs ORDER BY email, day")
	if err != nil {
		return err
	}
	for rows.Next() {
		var email, day string
		var total sql.NullFloat64
		if err := rows.Scan(&email, &day, &total); err != nil {
			rows.Close()
			return err
		}
		account, ok := byEmail[email]
		if !ok {
			continue
		}
		d := DayBackup{Day: day, Entries: make(map[string]float64)}
		if total.Valid {
			t := total.Float64
			d.TotalIntake = &t
		}
		if dayIndex[email] == nil {
			dayIndex[email] = make(map[string]int)
		}
		dayIndex[email][day] = len(account.Days)
		account.Days = append(account.Days, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = conn.QueryContext(ctx, "SELECT email, day, food_key, amount FROM day_entries")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var email, day, key string
		var amount float64
		if err := rows.Scan(&email, &day, &key, &amount); err != nil {
			return err
		}
		i, ok := dayIndex[email][day]
		if !ok {
			continue
		}
		byEmail[email].Days[i].Entries[key] = amount
	}
	return rows.Err()
}

func (s *BackupService) importAccount(ctx context.Context, account AccountBackup, result *ImportResult) (bool, error) {
	conn := s.db.Conn(ctx)

	var count int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE email = ?", account.Email).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	query := "INSERT INTO accounts (email, password_hash, protein_goal, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := conn.ExecContext(ctx, query, account.Email, account.PasswordHash, account.ProteinGoal, account.CreatedAt, account.UpdatedAt); err != nil {
		return false, err
	}
	result.Accounts++

	for _, day := range account.Days {
		query := "INSERT INTO day_logs (email, day, total_intake) VALUES (?, ?, ?)"
		if _, err := conn.ExecContext(ctx, query, account.Email, day.Day, day.TotalIntake); err != nil {
			return false, fmt.Errorf("day %s: %w", day.Day, err)
		}
		result.Days++

		for key, amount := range day.Entries {
			query := "INSERT INTO day_entries (email, day, food_key, amount) VALUES (?, ?, ?, ?)"
			if _, err := conn.ExecContext(ctx, query, account.Email, day.Day, key, amount); err != nil {
				return false, fmt.Errorf("entry %s on %s: %w", key, day.Day, err)
			}
			result.Entries++
		}
	}
	return true, nil
}
