package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	SessionDuration time.Duration
	LogFile         string

	// Nutritionix food lookup
	NutritionixAppID  string
	NutritionixAppKey string
	NutritionixURL    string

	// Support email via Amazon SES
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	SupportEmail string
	EmailDebug   bool

	// Login rate limiting, requests per second and burst per client IP
	LoginRate  float64
	LoginBurst int
	// TrustProxy reads client IPs from X-Forwarded-For and X-Real-IP.
	// Only enable behind a proxy that sets those headers.
	TrustProxy bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort:        getEnv("PORT", "8080"),
		DatabaseType:      getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:      getEnv("DB_PATH", "./proteinbuddy.db"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SessionDuration:   getEnvDuration("SESSION_DURATION", 30*24*time.Hour),
		LogFile:           getEnv("LOG_FILE", ""),
		NutritionixAppID:  getEnv("NUTRITIONIX_APP_ID", ""),
		NutritionixAppKey: getEnv("NUTRITIONIX_APP_KEY", ""),
		NutritionixURL:    getEnv("NUTRITIONIX_URL", "https://trackapi.nutritionix.com/v2/natural/nutrients"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "MyProteinBuddy"),
		SupportEmail:      getEnv("SUPPORT_EMAIL", ""),
		EmailDebug:        getEnvBool("EMAIL_DEBUG", false),
		LoginRate:         getEnvFloat("LOGIN_RATE", 1),
		LoginBurst:        getEnvInt("LOGIN_BURST", 5),
		TrustProxy:        getEnvBool("TRUST_PROXY", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
