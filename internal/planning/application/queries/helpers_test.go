package queries

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/profile"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockTimelineRepo is a mock implementation of domain.TimelineRepository.
type mockTimelineRepo struct {
	mock.Mock
}

func (m *mockTimelineRepo) Save(ctx context.Context, timeline *domain.DayTimeline) error {
	args := m.Called(ctx, timeline)
	return args.Error(0)
}

func (m *mockTimelineRepo) FindByDate(ctx context.Context, date time.Time) (*domain.DayTimeline, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayTimeline), args.Error(1)
}

func (m *mockTimelineRepo) FindRange(ctx context.Context, from, to time.Time) ([]*domain.DayTimeline, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DayTimeline), args.Error(1)
}

func (m *mockTimelineRepo) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.DayTimeline, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DayTimeline), args.Error(1)
}

// mockTaskRepo is a mock implementation of domain.TaskRepository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *mockTaskRepo) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var monday = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

func at(d time.Time, h, m int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, d.Location())
}

// plannedDay returns the default day with one two-hour task at 08:00.
func plannedDay(t *testing.T) *domain.DayTimeline {
	t.Helper()
	tl, err := profile.Default().NewTimeline(monday, nil)
	require.NoError(t, err)
	task, err := domain.NewTask("Essay", 2*time.Hour, 4)
	require.NoError(t, err)
	_, err = tl.PlaceTask(task, at(monday, 8, 0))
	require.NoError(t, err)
	return tl
}
