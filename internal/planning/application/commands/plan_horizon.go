package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/felixgeelhaar/dayplanner/internal/planning"

// PlanRecorder receives the outcome of every allocation run.
type PlanRecorder interface {
	PlanCompleted(scheduled, failed int, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) PlanCompleted(int, int, time.Duration) {}

// PlanHorizonCommand allocates the pending tasks into Days consecutive
// days from Start.
type PlanHorizonCommand struct {
	Start time.Time
	Days  int
	// Split places splittable tasks in parts of at least MinChunk when no
	// single gap holds them.
	Split    bool
	MinChunk time.Duration
}

type PlanHorizonResult struct {
	Allocation domain.Allocation
	Timelines  []*domain.DayTimeline
	// Created counts the days built from the template during this run.
	Created int
	Events  int
}

type PlanHorizonHandler struct {
	deps    Deps
	metrics PlanRecorder
}

func NewPlanHorizonHandler(deps Deps, metrics PlanRecorder) *PlanHorizonHandler {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &PlanHorizonHandler{deps: deps, metrics: metrics}
}

// Handle runs the allocator over unscheduled and failed tasks. Existing
// placements are kept; the timelines and task statuses are stored together.
func (h *PlanHorizonHandler) Handle(ctx context.Context, cmd PlanHorizonCommand) (*PlanHorizonResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "planning.plan_horizon")
	defer span.End()
	span.SetAttributes(
		attribute.String("plan.start", domain.DateKey(cmd.Start)),
		attribute.Int("plan.days", cmd.Days),
		attribute.Bool("plan.split", cmd.Split),
	)

	started := time.Now()
	var result *PlanHorizonResult

	err := h.deps.mutate(ctx, func(txCtx context.Context) error {
		horizon, created, err := h.deps.loadHorizon(txCtx, cmd.Start, cmd.Days)
		if err != nil {
			return err
		}
		tasks, err := h.deps.Tasks.List(txCtx, domain.PendingFilter())
		if err != nil {
			return err
		}

		var opts []domain.AllocatorOption
		if cmd.Split {
			opts = append(opts, domain.WithSplitting(cmd.MinChunk))
		}
		allocation := domain.NewAllocator(opts...).Allocate(tasks, horizon)

		sources := make([]eventSource, 0, horizon.Len()+len(tasks))
		for _, tl := range horizon.Timelines() {
			if err := h.deps.Timelines.Save(txCtx, tl); err != nil {
				return err
			}
			sources = append(sources, tl)
		}
		for _, task := range tasks {
			if err := h.deps.Tasks.Save(txCtx, task); err != nil {
				return err
			}
			sources = append(sources, task)
		}
		events, err := h.deps.record(txCtx, sources...)
		if err != nil {
			return err
		}

		result = &PlanHorizonResult{
			Allocation: allocation,
			Timelines:  horizon.Timelines(),
			Created:    created,
			Events:     events,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan failed")
		return nil, err
	}

	elapsed := time.Since(started)
	scheduled, failed := result.Allocation.Scheduled(), result.Allocation.Failed()
	h.metrics.PlanCompleted(scheduled, failed, elapsed)
	span.SetAttributes(
		attribute.Int("plan.scheduled", scheduled),
		attribute.Int("plan.failed", failed),
	)

	h.deps.logger().InfoContext(ctx, "horizon planned",
		"start", domain.DateKey(cmd.Start),
		"days", cmd.Days,
		"scheduled", scheduled,
		"failed", failed,
		"duration_ms", elapsed.Milliseconds(),
	)
	for _, f := range result.Allocation.Failures() {
		h.deps.logger().WarnContext(ctx, "task not placed",
			"task_id", f.TaskID,
			"name", f.Name,
			"reason", string(f.Reason),
		)
	}
	return result, nil
}
