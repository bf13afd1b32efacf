// Package config reads dayplanner settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	// Redis enables the shared planning lock when set.
	RedisURL string

	// RabbitMQ receives outbox events when set.
	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string

	// Planning
	ProfilePath       string
	PlanHorizonDays   int
	PlanSplit         bool
	PlanSplitMinChunk time.Duration
	LockTTL           time.Duration
	LockWait          time.Duration

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	// Worker
	WorkerHealthAddr string
	OTelEndpoint     string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("DAYPLANNER_ENV", "development"),
		LogLevel: getEnv("DAYPLANNER_LOG_LEVEL", "warn"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", filepath.Join(dataDir(), "data.db")),

		RedisURL: getEnv("REDIS_URL", ""),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "dayplanner.planning.events"),
		RabbitMQQueue:    getEnv("RABBITMQ_QUEUE", "dayplanner.worker"),

		ProfilePath:       getEnv("PROFILE_PATH", filepath.Join(dataDir(), "profile.yaml")),
		PlanHorizonDays:   getIntEnv("PLAN_HORIZON_DAYS", 1),
		PlanSplit:         getBoolEnv("PLAN_SPLIT", false),
		PlanSplitMinChunk: getDurationEnv("PLAN_SPLIT_MIN_CHUNK", 15*time.Minute),
		LockTTL:           getDurationEnv("LOCK_TTL", 30*time.Second),
		LockWait:          getDurationEnv("LOCK_WAIT", 10*time.Second),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "127.0.0.1:8081"),
		OTelEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.PlanHorizonDays < 1 {
		cfg.PlanHorizonDays = 1
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// OutboxRetention is how long published messages are kept.
func (c *Config) OutboxRetention() time.Duration {
	return time.Duration(c.OutboxRetentionDays) * 24 * time.Hour
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dayplanner"
	}
	return filepath.Join(home, ".dayplanner")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
