package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// AddFixedSlotCommand registers an ad-hoc commitment on Date.
type AddFixedSlotCommand struct {
	Date        time.Time
	Start       time.Time
	End         time.Time
	Description string
}

type AddFixedSlotResult struct {
	TimelineID uuid.UUID
	Slot       domain.FixedSlot
}

type AddFixedSlotHandler struct {
	deps Deps
}

func NewAddFixedSlotHandler(deps Deps) *AddFixedSlotHandler {
	return &AddFixedSlotHandler{deps: deps}
}

// Handle adds the slot to the date's timeline, creating the timeline from
// the day template when none is stored. A ConflictError leaves storage
// unchanged.
func (h *AddFixedSlotHandler) Handle(ctx context.Context, cmd AddFixedSlotCommand) (*AddFixedSlotResult, error) {
	var result *AddFixedSlotResult

	err := h.deps.mutate(ctx, func(txCtx context.Context) error {
		tl, _, err := h.deps.timelineFor(txCtx, cmd.Date)
		if err != nil {
			return err
		}

		slot, err := tl.AddFixedSlot(cmd.Start, cmd.End, cmd.Description)
		if err != nil {
			return err
		}

		if err := h.deps.Timelines.Save(txCtx, tl); err != nil {
			return err
		}
		if _, err := h.deps.record(txCtx, tl); err != nil {
			return err
		}

		result = &AddFixedSlotResult{TimelineID: tl.ID(), Slot: slot}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.deps.logger().InfoContext(ctx, "fixed slot added",
		"date", domain.DateKey(cmd.Date),
		"slot", result.Slot.Interval.String(),
		"description", result.Slot.Description,
	)
	return result, nil
}
