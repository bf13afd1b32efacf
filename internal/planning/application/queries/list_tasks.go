package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID            uuid.UUID
	Name          string
	Duration      time.Duration
	DurationMin   int
	Importance    int
	Deadline      *time.Time
	EarliestStart *time.Time
	Note          string
	Splittable    bool
	Status        string
	CreatedAt     time.Time
}

// ListTasksQuery lists tasks in the given statuses, or all tasks when
// Statuses is empty.
type ListTasksQuery struct {
	Statuses []domain.Status
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	tasks domain.TaskRepository
}

func NewListTasksHandler(tasks domain.TaskRepository) *ListTasksHandler {
	return &ListTasksHandler{tasks: tasks}
}

// Handle executes the ListTasksQuery.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	tasks, err := h.tasks.List(ctx, domain.TaskFilter{Statuses: query.Statuses})
	if err != nil {
		return nil, err
	}

	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = toTaskDTO(t)
	}
	return dtos, nil
}

func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:            t.ID(),
		Name:          t.Name(),
		Duration:      t.Duration(),
		DurationMin:   int(t.Duration().Minutes()),
		Importance:    t.Importance().Int(),
		Deadline:      t.Deadline(),
		EarliestStart: t.EarliestStart(),
		Note:          t.Note(),
		Splittable:    t.IsSplittable(),
		Status:        t.Status().String(),
		CreatedAt:     t.CreatedAt(),
	}
}
