package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// ImportTasksCommand contains the tasks read from a task file.
type ImportTasksCommand struct {
	Tasks []AddTaskCommand
}

// ImportTasksResult reports which tasks were stored. Tasks whose ID already
// exists are skipped so repeated imports are harmless.
type ImportTasksResult struct {
	Imported []uuid.UUID
	Skipped  []uuid.UUID
}

type ImportTasksHandler struct {
	deps Deps
}

func NewImportTasksHandler(deps Deps) *ImportTasksHandler {
	return &ImportTasksHandler{deps: deps}
}

// Handle stores every task or none: one invalid entry rejects the import.
func (h *ImportTasksHandler) Handle(ctx context.Context, cmd ImportTasksCommand) (*ImportTasksResult, error) {
	tasks := make([]*domain.Task, 0, len(cmd.Tasks))
	for i, c := range cmd.Tasks {
		task, err := c.task()
		if err != nil {
			return nil, fmt.Errorf("task %d (%s): %w", i+1, c.Name, err)
		}
		tasks = append(tasks, task)
	}

	result := &ImportTasksResult{}
	err := h.deps.mutate(ctx, func(txCtx context.Context) error {
		for _, task := range tasks {
			if _, err := h.deps.Tasks.FindByID(txCtx, task.ID()); err == nil {
				result.Skipped = append(result.Skipped, task.ID())
				continue
			} else if !errors.Is(err, domain.ErrNotFound) {
				return err
			}

			if err := h.deps.Tasks.Save(txCtx, task); err != nil {
				return err
			}
			if _, err := h.deps.record(txCtx, task); err != nil {
				return err
			}
			result.Imported = append(result.Imported, task.ID())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.deps.logger().InfoContext(ctx, "tasks imported",
		"imported", len(result.Imported),
		"skipped", len(result.Skipped),
	)
	return result, nil
}
