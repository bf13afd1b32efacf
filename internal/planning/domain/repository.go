package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskFilter narrows a task listing. An empty filter matches every task.
type TaskFilter struct {
	Statuses []Status
}

// Matches reports whether status passes the filter.
func (f TaskFilter) Matches(status Status) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// PendingFilter selects tasks the allocator should attempt.
func PendingFilter() TaskFilter {
	return TaskFilter{Statuses: []Status{StatusUnscheduled, StatusFailed}}
}

// TaskRepository persists tasks. FindByID returns a NotFoundError for an
// unknown id.
type TaskRepository interface {
	Save(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TimelineRepository persists day timelines keyed by date. FindByDate
// returns nil without error when no timeline exists for the date.
type TimelineRepository interface {
	Save(ctx context.Context, timeline *DayTimeline) error
	FindByDate(ctx context.Context, date time.Time) (*DayTimeline, error)
	FindRange(ctx context.Context, from, to time.Time) ([]*DayTimeline, error)
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]*DayTimeline, error)
}
