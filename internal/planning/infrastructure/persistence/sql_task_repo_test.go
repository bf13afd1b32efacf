package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLTaskRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLTaskRepository(setupTestDB(t), WithLocation(berlin))

	deadline := at(16, 18, 0)
	earliest := at(15, 9, 30)
	task, err := domain.NewTask("Write report", 90*time.Minute, 4,
		domain.WithDeadline(deadline),
		domain.WithEarliestStart(earliest),
		domain.WithNote("draft"),
		domain.Splittable(),
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, task))

	got, err := repo.FindByID(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, task.ID(), got.ID())
	assert.Equal(t, "Write report", got.Name())
	assert.Equal(t, 90*time.Minute, got.Duration())
	assert.Equal(t, domain.Importance(4), got.Importance())
	require.NotNil(t, got.Deadline())
	assert.True(t, deadline.Equal(*got.Deadline()))
	assert.Equal(t, berlin, got.Deadline().Location())
	require.NotNil(t, got.EarliestStart())
	assert.True(t, earliest.Equal(*got.EarliestStart()))
	assert.Equal(t, "draft", got.Note())
	assert.True(t, got.IsSplittable())
	assert.Equal(t, domain.StatusUnscheduled, got.Status())
	assert.Empty(t, got.DomainEvents())
}

func TestSQLTaskRepository_SaveUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLTaskRepository(setupTestDB(t))

	task, err := domain.NewTask("Call", 30*time.Minute, 2)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, task))

	tl := workday(t, 15)
	_, err = tl.PlaceTask(task, at(15, 9, 0))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, task))

	got, err := repo.FindByID(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, got.Status())

	all, err := repo.List(ctx, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLTaskRepository_FindByIDNotFound(t *testing.T) {
	repo := NewSQLTaskRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLTaskRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLTaskRepository(setupTestDB(t))
	tl := workday(t, 15)

	names := []string{"A", "B", "C"}
	tasks := make([]*domain.Task, len(names))
	for i, name := range names {
		task, err := domain.NewTask(name, time.Hour, 3)
		require.NoError(t, err)
		tasks[i] = task
	}
	_, err := tl.PlaceTask(tasks[1], at(15, 9, 0))
	require.NoError(t, err)
	for _, task := range tasks {
		require.NoError(t, repo.Save(ctx, task))
	}

	pending, err := repo.List(ctx, domain.PendingFilter())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.ElementsMatch(t, []string{"A", "C"}, []string{pending[0].Name(), pending[1].Name()})

	scheduled, err := repo.List(ctx, domain.TaskFilter{Statuses: []domain.Status{domain.StatusScheduled}})
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "B", scheduled[0].Name())
}

func TestSQLTaskRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLTaskRepository(setupTestDB(t))
	task, err := domain.NewTask("Temp", time.Hour, 1)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, task))

	require.NoError(t, repo.Delete(ctx, task.ID()))

	_, err = repo.FindByID(ctx, task.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, task.ID()), domain.ErrNotFound)
}
