package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"proteinbuddy/internal/config"
	"proteinbuddy/internal/database"
	"proteinbuddy/internal/handlers"
	"proteinbuddy/internal/ledger"
	"proteinbuddy/internal/repository"
	"proteinbuddy/internal/security"
	"proteinbuddy/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.LogFile != "" {
		logFile := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		defer logFile.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Initialize services
	proteinLedger := ledger.New(accountRepo)
	authService := service.NewAuthService(accountRepo, sessionRepo, proteinLedger, cfg.SessionDuration)
	profileService := service.NewProfileService(accountRepo, proteinLedger)
	foodService := service.NewFoodService(cfg.NutritionixAppID, cfg.NutritionixAppKey, cfg.NutritionixURL)
	if !foodService.IsEnabled() {
		log.Println("Food lookup disabled: NUTRITIONIX_APP_ID or NUTRITIONIX_APP_KEY not configured")
	}

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.SupportEmail, cfg.EmailDebug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, security.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst, cfg.TrustProxy))
	authHandler := handlers.NewAuthHandler(authService)
	intakeHandler := handlers.NewIntakeHandler(proteinLedger, foodService, authService)
	profileHandler := handlers.NewProfileHandler(profileService, authService, emailService)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.NewRouter(middleware, authHandler, intakeHandler, profileHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start background session cleanup
	go cleanupExpiredSessions(ctx, authService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := authService.CleanupExpiredSessions(ctx)
			if err != nil {
				log.Printf("Error cleaning up sessions: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("Removed %d expired sessions", count)
			}
		}
	}
}
