package commands

import (
	"context"

	"github.com/google/uuid"
)

type DeleteTaskCommand struct {
	TaskID uuid.UUID
}

type DeleteTaskHandler struct {
	deps Deps
}

func NewDeleteTaskHandler(deps Deps) *DeleteTaskHandler {
	return &DeleteTaskHandler{deps: deps}
}

// Handle frees the task's placements and deletes it.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	err := h.deps.mutate(ctx, func(txCtx context.Context) error {
		task, err := h.deps.Tasks.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if _, err := unschedule(txCtx, h.deps, task); err != nil {
			return err
		}
		return h.deps.Tasks.Delete(txCtx, task.ID())
	})
	if err != nil {
		return err
	}

	h.deps.logger().InfoContext(ctx, "task deleted", "task_id", cmd.TaskID)
	return nil
}
