package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	ContextStore ContextStoreConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string // empty selects the in-memory context store
}

type ContextStoreConfig struct {
	SessionTTL           time.Duration
	MaxDocsPerCollection int
	MaxTotalTokens       int
	TokenDivisor         int
	SweepInterval        time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		ContextStore: ContextStoreConfig{
			SessionTTL:           getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			MaxDocsPerCollection: getEnvAsInt("MAX_DOCS_PER_COLLECTION", 10),
			MaxTotalTokens:       getEnvAsInt("MAX_TOTAL_TOKENS", 1_500_000),
			TokenDivisor:         getEnvAsInt("TOKEN_DIVISOR", 3),
			SweepInterval:        getEnvAsDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
