package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Run("creates unscheduled task", func(t *testing.T) {
		task, err := domain.NewTask("  Write report  ", 90*time.Minute, 4, domain.WithNote("draft first"))

		require.NoError(t, err)
		assert.Equal(t, "Write report", task.Name())
		assert.Equal(t, 90*time.Minute, task.Duration())
		assert.Equal(t, domain.Importance(4), task.Importance())
		assert.Equal(t, "draft first", task.Note())
		assert.Equal(t, domain.StatusUnscheduled, task.Status())
		assert.False(t, task.HasDeadline())
		assert.False(t, task.IsSplittable())
		require.Len(t, task.DomainEvents(), 1)
		assert.Equal(t, domain.RoutingKeyTaskCreated, task.DomainEvents()[0].RoutingKey())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := domain.NewTask("   ", time.Hour, 3)
		assert.ErrorIs(t, err, domain.ErrValidation)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "name", verr.Field)
	})

	t.Run("rejects non-positive duration", func(t *testing.T) {
		_, err := domain.NewTask("Task", 0, 3)
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = domain.NewTask("Task", -time.Minute, 3)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects importance out of range", func(t *testing.T) {
		_, err := domain.NewTask("Task", time.Hour, 0)
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = domain.NewTask("Task", time.Hour, 6)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects earliest start after deadline", func(t *testing.T) {
		deadline := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		_, err := domain.NewTask("Task", time.Hour, 3,
			domain.WithDeadline(deadline),
			domain.WithEarliestStart(deadline.Add(time.Hour)),
		)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("keeps optional constraints", func(t *testing.T) {
		deadline := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
		earliest := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
		task, err := domain.NewTask("Task", time.Hour, 3,
			domain.WithDeadline(deadline),
			domain.WithEarliestStart(earliest),
			domain.Splittable(),
		)

		require.NoError(t, err)
		require.NotNil(t, task.Deadline())
		assert.True(t, deadline.Equal(*task.Deadline()))
		require.NotNil(t, task.EarliestStart())
		assert.True(t, earliest.Equal(*task.EarliestStart()))
		assert.True(t, task.IsSplittable())
	})
}

func TestParseStatus(t *testing.T) {
	for _, s := range []domain.Status{domain.StatusUnscheduled, domain.StatusScheduled, domain.StatusFailed} {
		parsed, err := domain.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := domain.ParseStatus("done")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewImportance(t *testing.T) {
	imp, err := domain.NewImportance(5)
	require.NoError(t, err)
	assert.Equal(t, 5, imp.Int())

	_, err = domain.NewImportance(9)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
