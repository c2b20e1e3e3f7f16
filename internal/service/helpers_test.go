package service

import (
	"path/filepath"
	"testing"
	"time"

	"proteinbuddy/internal/database"
	"proteinbuddy/internal/ledger"
	"proteinbuddy/internal/models"
	"proteinbuddy/internal/repository"
)

const testDay = models.Day("2024-06-01")

type testServices struct {
	db       *database.DB
	accounts *repository.AccountRepository
	sessions *repository.SessionRepository
	ledger   *ledger.Ledger
	auth     *AuthService
	profile  *ProfileService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	accounts := repository.NewAccountRepository(db)
	sessions := repository.NewSessionRepository(db)
	l := ledger.New(accounts)

	return &testServices{
		db:       db,
		accounts: accounts,
		sessions: sessions,
		ledger:   l,
		auth:     NewAuthService(accounts, sessions, l, time.Hour),
		profile:  NewProfileService(accounts, l),
	}
}
