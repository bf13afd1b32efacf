package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/google/uuid"
)

type UnscheduleTaskCommand struct {
	TaskID uuid.UUID
}

// UnscheduleTaskResult lists the dates the task was removed from.
type UnscheduleTaskResult struct {
	Dates []time.Time
}

type UnscheduleTaskHandler struct {
	deps Deps
}

func NewUnscheduleTaskHandler(deps Deps) *UnscheduleTaskHandler {
	return &UnscheduleTaskHandler{deps: deps}
}

// Handle removes every placement of the task. Unscheduling a task that is
// not placed changes nothing.
func (h *UnscheduleTaskHandler) Handle(ctx context.Context, cmd UnscheduleTaskCommand) (*UnscheduleTaskResult, error) {
	var result *UnscheduleTaskResult
	err := h.deps.mutate(ctx, func(txCtx context.Context) error {
		task, err := h.deps.Tasks.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		dates, err := unschedule(txCtx, h.deps, task)
		if err != nil {
			return err
		}
		result = &UnscheduleTaskResult{Dates: dates}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.deps.logger().InfoContext(ctx, "task unscheduled",
		"task_id", cmd.TaskID,
		"days", len(result.Dates),
	)
	return result, nil
}

func unschedule(ctx context.Context, deps Deps, task *domain.Task) ([]time.Time, error) {
	timelines, err := deps.Timelines.FindByTask(ctx, task.ID())
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	sources := make([]eventSource, 0, len(timelines)+1)
	for _, tl := range timelines {
		if !tl.RemoveTask(task) {
			continue
		}
		if err := deps.Timelines.Save(ctx, tl); err != nil {
			return nil, err
		}
		dates = append(dates, tl.Date())
		sources = append(sources, tl)
	}
	if len(dates) > 0 {
		if err := deps.Tasks.Save(ctx, task); err != nil {
			return nil, err
		}
	}
	sources = append(sources, task)
	if _, err := deps.record(ctx, sources...); err != nil {
		return nil, err
	}
	return dates, nil
}
