package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"DAYPLANNER_ENV", "DAYPLANNER_LOG_LEVEL",
	"DATABASE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
	"REDIS_URL", "RABBITMQ_URL", "RABBITMQ_EXCHANGE", "RABBITMQ_QUEUE",
	"PROFILE_PATH", "PLAN_HORIZON_DAYS", "PLAN_SPLIT", "PLAN_SPLIT_MIN_CHUNK",
	"LOCK_TTL", "LOCK_WAIT",
	"OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_RETRIES",
	"OUTBOX_RETENTION_DAYS", "OUTBOX_CLEANUP_INTERVAL", "OUTBOX_PROCESSOR_ENABLED",
	"WORKER_HEALTH_ADDR", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// isolate runs the test in an empty directory with every variable unset so
// neither a stray .env file nor the caller's environment leaks in.
func isolate(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
		require.NoError(t, os.Unsetenv(v))
	}
	t.Chdir(t.TempDir())
}

func TestLoad_DefaultValues(t *testing.T) {
	isolate(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.DatabaseDriver)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, filepath.Join(home, ".dayplanner", "data.db"), cfg.SQLitePath)
	assert.Equal(t, filepath.Join(home, ".dayplanner", "profile.yaml"), cfg.ProfilePath)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, "dayplanner.planning.events", cfg.RabbitMQExchange)

	assert.Equal(t, 1, cfg.PlanHorizonDays)
	assert.False(t, cfg.PlanSplit)
	assert.Equal(t, 15*time.Minute, cfg.PlanSplitMinChunk)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)

	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 5, cfg.OutboxMaxRetries)
	assert.Equal(t, 14*24*time.Hour, cfg.OutboxRetention())
	assert.True(t, cfg.OutboxProcessorEnabled)
	assert.Equal(t, "127.0.0.1:8081", cfg.WorkerHealthAddr)
}

func TestLoad_FromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DAYPLANNER_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://planner@localhost/planner")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("PLAN_HORIZON_DAYS", "5")
	t.Setenv("PLAN_SPLIT", "true")
	t.Setenv("PLAN_SPLIT_MIN_CHUNK", "20m")
	t.Setenv("OUTBOX_BATCH_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://planner@localhost/planner", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, 5, cfg.PlanHorizonDays)
	assert.True(t, cfg.PlanSplit)
	assert.Equal(t, 20*time.Minute, cfg.PlanSplitMinChunk)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	isolate(t)
	t.Setenv("PLAN_HORIZON_DAYS", "0")
	t.Setenv("OUTBOX_BATCH_SIZE", "many")
	t.Setenv("LOCK_TTL", "soon")
	t.Setenv("PLAN_SPLIT", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.PlanHorizonDays)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.False(t, cfg.PlanSplit)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("PLAN_HORIZON_DAYS=3\nREDIS_URL=redis://cache:6379/0\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("PLAN_HORIZON_DAYS")
		_ = os.Unsetenv("REDIS_URL")
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.PlanHorizonDays)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
}
