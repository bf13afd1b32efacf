package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHorizon(t *testing.T, days int) *domain.Horizon {
	t.Helper()
	h, err := domain.NewHorizon(domain.HorizonConfig{
		Start:  monday,
		Days:   days,
		Window: domain.DayWindow{WakeUp: hm(8, 0), Sleep: hm(16, 0)},
	})
	require.NoError(t, err)
	return h
}

func TestNewHorizon(t *testing.T) {
	t.Run("creates consecutive empty days", func(t *testing.T) {
		h := newHorizon(t, 3)

		days := h.Timelines()
		require.Len(t, days, 3)
		for i, day := range days {
			assert.Equal(t, monday.AddDate(0, 0, i), day.Date())
			assert.Empty(t, day.FixedSlots())
		}
		assert.Equal(t, monday, h.Start())
		assert.Equal(t, clock(8, 0), h.Bounds().Start)
		assert.Equal(t, time.Date(2024, 1, 17, 16, 0, 0, 0, time.UTC), h.Bounds().End)
	})

	t.Run("applies per-date overrides", func(t *testing.T) {
		h, err := domain.NewHorizon(domain.HorizonConfig{
			Start:  monday,
			Days:   2,
			Window: domain.DayWindow{WakeUp: hm(8, 0), Sleep: hm(22, 0)},
			Overrides: map[string]domain.DayWindow{
				"2024-01-16": {WakeUp: hm(10, 0), Sleep: hm(20, 0)},
			},
		})
		require.NoError(t, err)

		tuesday, err := h.Day(monday.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC), tuesday.Bounds().Start)
	})

	t.Run("rejects non-positive day count", func(t *testing.T) {
		_, err := domain.NewHorizon(domain.HorizonConfig{Start: monday, Days: 0,
			Window: domain.DayWindow{WakeUp: hm(8, 0), Sleep: hm(16, 0)}})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects invalid window", func(t *testing.T) {
		_, err := domain.NewHorizon(domain.HorizonConfig{Start: monday, Days: 1,
			Window: domain.DayWindow{WakeUp: hm(25, 0), Sleep: hm(16, 0)}})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAssembleHorizon(t *testing.T) {
	window := domain.DayWindow{WakeUp: hm(8, 0), Sleep: hm(16, 0)}
	day := func(offset int) *domain.DayTimeline {
		tl, err := domain.NewDayTimeline(monday.AddDate(0, 0, offset), window)
		require.NoError(t, err)
		return tl
	}

	t.Run("rejects gap in dates", func(t *testing.T) {
		_, err := domain.AssembleHorizon([]*domain.DayTimeline{day(0), day(2)})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects duplicate dates", func(t *testing.T) {
		_, err := domain.AssembleHorizon([]*domain.DayTimeline{day(0), day(0)})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects overlapping windows", func(t *testing.T) {
		late, err := domain.NewDayTimeline(monday, domain.DayWindow{WakeUp: hm(20, 0), Sleep: hm(10, 0)})
		require.NoError(t, err)

		_, err = domain.AssembleHorizon([]*domain.DayTimeline{late, day(1)})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestHorizon_Day(t *testing.T) {
	h := newHorizon(t, 2)

	day, err := h.Day(monday.Add(15 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, monday, day.Date())

	_, err = h.Day(monday.AddDate(0, 0, 2))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.Day(monday.AddDate(0, 0, -1))
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "2024-01-14", nf.Key)
}

func TestHorizon_EarliestFeasibleStart(t *testing.T) {
	t.Run("earliest date then earliest time", func(t *testing.T) {
		h := newHorizon(t, 2)
		first, _ := h.Day(monday)
		_, err := first.AddFixedSlot(clock(8, 0), clock(15, 30), "Exam")
		require.NoError(t, err)

		day, start, ok := h.EarliestFeasibleStart(time.Hour, h.Bounds().Start, nil)

		require.True(t, ok)
		assert.Equal(t, monday.AddDate(0, 0, 1), day.Date())
		assert.Equal(t, time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC), start)
	})

	t.Run("starts from not before", func(t *testing.T) {
		h := newHorizon(t, 3)
		notBefore := time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)

		day, start, ok := h.EarliestFeasibleStart(time.Hour, notBefore, nil)

		require.True(t, ok)
		assert.Equal(t, monday.AddDate(0, 0, 1), day.Date())
		assert.Equal(t, notBefore, start)
	})

	t.Run("honours not after", func(t *testing.T) {
		h := newHorizon(t, 2)
		first, _ := h.Day(monday)
		_, err := first.AddFixedSlot(clock(8, 0), clock(16, 0), "Busy")
		require.NoError(t, err)
		notAfter := clock(23, 0)

		_, _, ok := h.EarliestFeasibleStart(time.Hour, h.Bounds().Start, &notAfter)
		assert.False(t, ok)
	})

	t.Run("not found when exhausted", func(t *testing.T) {
		h := newHorizon(t, 2)

		_, _, ok := h.EarliestFeasibleStart(9*time.Hour, h.Bounds().Start, nil)
		assert.False(t, ok)
	})
}

func TestAllocator_MultiDay(t *testing.T) {
	t.Run("spills onto next day", func(t *testing.T) {
		h := newHorizon(t, 2)
		first, _ := h.Day(monday)
		_, err := first.AddFixedSlot(clock(8, 0), clock(12, 0), "Morning classes")
		require.NoError(t, err)
		_, err = first.AddFixedSlot(clock(12, 0), clock(16, 0), "Afternoon classes")
		require.NoError(t, err)
		task := newTask(t, "Project", 2*time.Hour, 3)

		result := domain.NewAllocator().Allocate([]*domain.Task{task}, h)

		require.Equal(t, 1, result.Scheduled())
		placement := result.Outcomes[0].Placements[0]
		assert.Equal(t, monday.AddDate(0, 0, 1), placement.Date)
		second, _ := h.Day(monday.AddDate(0, 0, 1))
		assert.Len(t, second.PlacedTasks(), 1)
	})

	t.Run("deadline before spill day is unreachable", func(t *testing.T) {
		h := newHorizon(t, 2)
		first, _ := h.Day(monday)
		_, err := first.AddFixedSlot(clock(8, 0), clock(16, 0), "Full")
		require.NoError(t, err)
		task := newTask(t, "Report", time.Hour, 3, domain.WithDeadline(clock(20, 0)))

		result := domain.NewAllocator().Allocate([]*domain.Task{task}, h)

		require.Equal(t, 1, result.Failed())
		assert.Equal(t, domain.ReasonDeadlineUnreachable, result.Outcomes[0].Reason)
	})

	t.Run("remove task clears every day", func(t *testing.T) {
		h := newHorizon(t, 2)
		task := newTask(t, "Long", 12*time.Hour, 3, domain.Splittable())
		result := domain.NewAllocator(domain.WithSplitting(30*time.Minute)).Allocate([]*domain.Task{task}, h)
		require.Equal(t, 1, result.Scheduled())
		require.Len(t, result.Outcomes[0].Placements, 2)

		touched := h.RemoveTask(task)

		assert.Len(t, touched, 2)
		assert.Equal(t, 16*time.Hour, h.FreeTime())
		assert.Equal(t, domain.StatusUnscheduled, task.Status())
	})
}
