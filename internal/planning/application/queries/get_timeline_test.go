package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetTimelineHandler_Handle(t *testing.T) {
	t.Run("returns the stored timeline", func(t *testing.T) {
		repo := new(mockTimelineRepo)
		tl := plannedDay(t)
		repo.On("FindByDate", mock.Anything, monday).Return(tl, nil)

		dto, err := NewGetTimelineHandler(repo, profile.Default()).Handle(context.Background(), GetTimelineQuery{Date: monday})

		require.NoError(t, err)
		assert.True(t, dto.Exists)
		assert.Equal(t, tl.ID(), dto.ID)
		require.Len(t, dto.FixedSlots, 3)
		assert.Equal(t, "Breakfast", dto.FixedSlots[0].Label)
		require.Len(t, dto.Tasks, 1)
		assert.Equal(t, "Essay", dto.Tasks[0].Label)
		assert.Equal(t, 120, dto.Tasks[0].DurationMin)
		assert.Equal(t, 4, dto.Tasks[0].Importance)
		assert.Equal(t, 13*60+50-120, dto.FreeMins)
		require.Len(t, dto.Free, 4)
		assert.Equal(t, at(monday, 10, 0), dto.Free[1].StartTime)
		assert.Contains(t, dto.Rendered, "08:00 - 10:00  [task 4] Essay")
		repo.AssertExpectations(t)
	})

	t.Run("falls back to the profile", func(t *testing.T) {
		repo := new(mockTimelineRepo)
		repo.On("FindByDate", mock.Anything, monday).Return(nil, nil)

		dto, err := NewGetTimelineHandler(repo, profile.Default()).Handle(context.Background(), GetTimelineQuery{Date: monday})

		require.NoError(t, err)
		assert.False(t, dto.Exists)
		assert.Empty(t, dto.Tasks)
		assert.Len(t, dto.FixedSlots, 3)
		assert.Equal(t, at(monday, 7, 20), dto.WakeUp)
		assert.Equal(t, at(monday, 23, 40), dto.Sleep)
		assert.Equal(t, 13*60+50, dto.FreeMins)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := new(mockTimelineRepo)
		repo.On("FindByDate", mock.Anything, monday).Return(nil, errors.New("db down"))

		_, err := NewGetTimelineHandler(repo, profile.Default()).Handle(context.Background(), GetTimelineQuery{Date: monday})

		assert.EqualError(t, err, "db down")
	})
}
