package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/migrations"
	"github.com/stretchr/testify/require"
)

var berlin = time.FixedZone("CET", 3600)

func setupTestDB(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "planner.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.Run(ctx, conn)
	require.NoError(t, err)
	return conn
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, berlin)
}

func at(d, h, m int) time.Time {
	return time.Date(2024, 1, d, h, m, 0, 0, berlin)
}

func workday(t *testing.T, d int) *domain.DayTimeline {
	t.Helper()
	tl, err := domain.NewDayTimeline(day(d), domain.DayWindow{WakeUp: 8 * time.Hour, Sleep: 16 * time.Hour})
	require.NoError(t, err)
	return tl
}
