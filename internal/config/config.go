package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Wallet Policy
	MinWithdrawalAmount float64
	MaxDepositAmount    float64

	// Security
	JWTSecret             string
	SessionTimeoutMin     int
	LoginRateLimitSeconds int
	BcryptCost            int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/fantasyarena?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Wallet Policy
		MinWithdrawalAmount: getEnvFloat("MIN_WITHDRAWAL_AMOUNT", 25),
		MaxDepositAmount:    getEnvFloat("MAX_DEPOSIT_AMOUNT", 100000),

		// Security
		JWTSecret:             getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTimeoutMin:     getEnvInt("SESSION_TIMEOUT_MINUTES", 720),
		LoginRateLimitSeconds: getEnvInt("LOGIN_RATE_LIMIT_SECONDS", 2),
		BcryptCost:            getEnvInt("BCRYPT_COST", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
