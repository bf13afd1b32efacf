package commands_test

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/dayplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAddFixedSlotHandler_Handle(t *testing.T) {
	t.Run("creates the timeline from the profile", func(t *testing.T) {
		f := newFixture(t)

		res, err := commands.NewAddFixedSlotHandler(f.deps).Handle(context.Background(), commands.AddFixedSlotCommand{
			Date:        monday,
			Start:       at(monday, 9, 0),
			End:         at(monday, 10, 30),
			Description: "Lecture",
		})

		require.NoError(t, err)
		assert.Equal(t, "Lecture", res.Slot.Description)

		tl := f.timelines.get(monday)
		require.NotNil(t, tl)
		assert.Equal(t, res.TimelineID, tl.ID())
		assert.Equal(t, at(monday, 7, 20), tl.Bounds().Start)

		var names []string
		for _, s := range tl.FixedSlots() {
			names = append(names, s.Description)
		}
		assert.Equal(t, []string{"Breakfast", "Lecture", "Lunch", "Dinner"}, names)

		assert.Equal(t, []string{domain.RoutingKeySlotAdded}, f.routingKeys(), "profile slots are not reported")
	})

	t.Run("adds to an existing timeline", func(t *testing.T) {
		f := newFixture(t)
		h := commands.NewAddFixedSlotHandler(f.deps)
		_, err := h.Handle(context.Background(), commands.AddFixedSlotCommand{
			Date: monday, Start: at(monday, 9, 0), End: at(monday, 10, 0), Description: "Lecture",
		})
		require.NoError(t, err)

		_, err = h.Handle(context.Background(), commands.AddFixedSlotCommand{
			Date: monday, Start: at(monday, 10, 0), End: at(monday, 11, 0), Description: "Lab",
		})

		require.NoError(t, err)
		assert.Len(t, f.timelines.get(monday).FixedSlots(), 5)
	})

	t.Run("conflict leaves storage unchanged", func(t *testing.T) {
		f := newFixture(t)

		_, err := commands.NewAddFixedSlotHandler(f.deps).Handle(context.Background(), commands.AddFixedSlotCommand{
			Date: monday, Start: at(monday, 12, 30), End: at(monday, 13, 0), Description: "Call",
		})

		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Lunch", conflict.With)
		assert.Nil(t, f.timelines.get(monday))
		assert.Empty(t, f.outbox.Messages())
		f.uow.AssertCalled(t, "Rollback", mock.Anything)
	})

	t.Run("outside the waking window", func(t *testing.T) {
		f := newFixture(t)

		_, err := commands.NewAddFixedSlotHandler(f.deps).Handle(context.Background(), commands.AddFixedSlotCommand{
			Date: monday, Start: at(monday, 6, 0), End: at(monday, 7, 0), Description: "Run",
		})

		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}
