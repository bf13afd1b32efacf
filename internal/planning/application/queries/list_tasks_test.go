package queries

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListTasksHandler_Handle(t *testing.T) {
	deadline := at(monday, 18, 0)
	task, err := domain.NewTask("Report", 90*time.Minute, 5, domain.WithDeadline(deadline), domain.WithNote("section 2"))
	require.NoError(t, err)

	repo := new(mockTaskRepo)
	filter := domain.TaskFilter{Statuses: []domain.Status{domain.StatusUnscheduled}}
	repo.On("List", mock.Anything, filter).Return([]*domain.Task{task}, nil)

	dtos, err := NewListTasksHandler(repo).Handle(context.Background(), ListTasksQuery{Statuses: filter.Statuses})

	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, task.ID(), dtos[0].ID)
	assert.Equal(t, 90, dtos[0].DurationMin)
	assert.Equal(t, 5, dtos[0].Importance)
	assert.Equal(t, "unscheduled", dtos[0].Status)
	assert.Equal(t, "section 2", dtos[0].Note)
	require.NotNil(t, dtos[0].Deadline)
	assert.True(t, deadline.Equal(*dtos[0].Deadline))
	repo.AssertExpectations(t)
}

func TestListTasksHandler_Empty(t *testing.T) {
	repo := new(mockTaskRepo)
	repo.On("List", mock.Anything, domain.TaskFilter{}).Return([]*domain.Task{}, nil)

	dtos, err := NewListTasksHandler(repo).Handle(context.Background(), ListTasksQuery{})

	require.NoError(t, err)
	assert.Empty(t, dtos)
}
