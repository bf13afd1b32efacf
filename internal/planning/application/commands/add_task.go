package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// AddTaskCommand contains the data needed to create a task.
type AddTaskCommand struct {
	// ID keeps an identity assigned elsewhere. A zero ID gets a new one.
	ID            uuid.UUID
	Name          string
	Duration      time.Duration
	Importance    int
	Deadline      *time.Time
	EarliestStart *time.Time
	Note          string
	Splittable    bool
}

func (c AddTaskCommand) task() (*domain.Task, error) {
	importance, err := domain.NewImportance(c.Importance)
	if err != nil {
		return nil, err
	}
	var opts []domain.TaskOption
	if c.ID != uuid.Nil {
		opts = append(opts, domain.WithID(c.ID))
	}
	if c.Deadline != nil {
		opts = append(opts, domain.WithDeadline(*c.Deadline))
	}
	if c.EarliestStart != nil {
		opts = append(opts, domain.WithEarliestStart(*c.EarliestStart))
	}
	if c.Note != "" {
		opts = append(opts, domain.WithNote(c.Note))
	}
	if c.Splittable {
		opts = append(opts, domain.Splittable())
	}
	return domain.NewTask(c.Name, c.Duration, importance, opts...)
}

type AddTaskResult struct {
	TaskID uuid.UUID
}

// AddTaskHandler handles the AddTaskCommand.
type AddTaskHandler struct {
	deps Deps
}

func NewAddTaskHandler(deps Deps) *AddTaskHandler {
	return &AddTaskHandler{deps: deps}
}

// Handle validates and stores the task. Nothing is written when the input
// is invalid.
func (h *AddTaskHandler) Handle(ctx context.Context, cmd AddTaskCommand) (*AddTaskResult, error) {
	task, err := cmd.task()
	if err != nil {
		return nil, err
	}

	err = h.deps.mutate(ctx, func(txCtx context.Context) error {
		if err := h.deps.Tasks.Save(txCtx, task); err != nil {
			return err
		}
		_, err := h.deps.record(txCtx, task)
		return err
	})
	if err != nil {
		return nil, err
	}

	h.deps.logger().InfoContext(ctx, "task added",
		"task_id", task.ID(),
		"name", task.Name(),
		"duration", task.Duration(),
		"importance", task.Importance().Int(),
	)
	return &AddTaskResult{TaskID: task.ID()}, nil
}
