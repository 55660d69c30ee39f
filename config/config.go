package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Task store backends.
const (
	TaskStoreFile     = "file"
	TaskStorePostgres = "postgres"
)

// Config holds all runtime configuration, read from environment variables
// (main loads .env first). Every field has a default except DatabaseURL.
type Config struct {
	Addr        string
	DatabaseURL string

	YahooHost    string
	YahooTimeout time.Duration

	TaskStore         string
	TaskFile          string
	TaskRetentionDays int
	CleanupCron       string

	DefaultPerPage       int
	MaxPerPage           int
	MaxConcurrentBatches int64

	CORSOrigins []string
}

// Load reads configuration from the environment and applies defaults.
func Load() *Config {
	cfg := &Config{
		Addr:                 getEnv("ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		YahooHost:            getEnv("YAHOO_FINANCE_HOST", "query1.finance.yahoo.com"),
		YahooTimeout:         time.Duration(getEnvInt("YAHOO_FINANCE_TIMEOUT", 30)) * time.Second,
		TaskStore:            getEnv("TASK_STORE", TaskStoreFile),
		TaskFile:             getEnv("TASK_FILE", "data/progress_data.json"),
		TaskRetentionDays:    getEnvInt("TASK_RETENTION_DAYS", 7),
		CleanupCron:          getEnv("CLEANUP_CRON", "0 3 * * *"),
		DefaultPerPage:       getEnvInt("DEFAULT_PER_PAGE", 12),
		MaxPerPage:           getEnvInt("MAX_PER_PAGE", 100),
		MaxConcurrentBatches: int64(getEnvInt("MAX_CONCURRENT_BATCHES", 2)),
	}

	origins := getEnv("CORS_ORIGINS", "http://localhost:8000,http://127.0.0.1:8000")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.TaskStore != TaskStoreFile && c.TaskStore != TaskStorePostgres {
		return fmt.Errorf("TASK_STORE must be %q or %q, got %q", TaskStoreFile, TaskStorePostgres, c.TaskStore)
	}
	if c.TaskRetentionDays < 1 {
		return fmt.Errorf("TASK_RETENTION_DAYS must be positive")
	}
	if c.MaxConcurrentBatches < 1 {
		return fmt.Errorf("MAX_CONCURRENT_BATCHES must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
