package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	StagingDSN  string // Postgres connection string for the aloware_import staging table
	SkipAuth    bool
	Environment string
	AppId       string

	// Business constants carried over from the original sync job.
	DefaultAssigneeID string // owner stamped on every created activity
	SyncPageSize      int    // rows per source page and per bulk write
	SyncPacingMs      int    // delay between pages to stay under target rate limits
	SyncSchedule      string // cron expression for scheduled runs, empty disables
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", "secret"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:            getEnv("DB_NAME", "go-callsync"),
		StagingDSN:        getEnv("STAGING_DSN", ""),
		SkipAuth:          getEnv("SKIP_AUTH", "false") == "true",
		Environment:       getEnv("ENVIRONMENT", "development"),
		AppId:             getEnv("APP_ID", "go-callsync"),
		DefaultAssigneeID: getEnv("DEFAULT_ASSIGNEE_ID", "005a500001mkMsbAAE"),
		SyncPageSize:      getEnvInt("SYNC_PAGE_SIZE", 200),
		SyncPacingMs:      getEnvInt("SYNC_PACING_MS", 50),
		SyncSchedule:      getEnv("SYNC_SCHEDULE", ""),
	}

	if cfg.StagingDSN == "" {
		return nil, fmt.Errorf("STAGING_DSN is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
