package outbox_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLRepository(t *testing.T) (*outbox.SQLRepository, database.Connection) {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "outbox.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.Run(ctx, conn)
	require.NoError(t, err)
	return outbox.NewSQLRepository(conn), conn
}

func TestSQLRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLRepository(t)

	first := testMessage("planning.task.created")
	second := testMessage("planning.task.placed")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{first, second}))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	msgs, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.EventID, msgs[0].EventID)
	assert.Equal(t, first.AggregateID, msgs[0].AggregateID)
	assert.JSONEq(t, `{"name":"Report"}`, string(msgs[0].Payload))
	assert.WithinDuration(t, first.CreatedAt, msgs[0].CreatedAt, time.Microsecond)

	require.NoError(t, repo.MarkPublished(ctx, first.ID))
	require.NoError(t, repo.MarkFailed(ctx, second.ID, "broker down", time.Now().Add(time.Hour)))

	msgs, err = repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	require.NoError(t, repo.MarkDead(ctx, second.ID, "gave up"))
	pending, err = repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)

	deleted, err := repo.DeleteOld(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestSQLRepository_RetryBecomesDue(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLRepository(t)
	msg := testMessage("planning.task.failed")
	require.NoError(t, repo.Save(ctx, msg))

	require.NoError(t, repo.MarkFailed(ctx, msg.ID, "timeout", time.Now().Add(-time.Second)))

	msgs, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, 1, msgs[0].RetryCount)
	require.NotNil(t, msgs[0].LastError)
	assert.Equal(t, "timeout", *msgs[0].LastError)
}

func TestSQLRepository_SaveJoinsTransaction(t *testing.T) {
	ctx := context.Background()
	repo, conn := newSQLRepository(t)
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(txCtx, []*outbox.Message{testMessage("a")}))
	require.NoError(t, uow.Rollback(txCtx))

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}
