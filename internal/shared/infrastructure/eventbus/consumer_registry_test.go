package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerRegistry_Register(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(quietLogger())
	registry.Register(&mockConsumer{eventTypes: []string{"planning.task.placed", "planning.task.failed"}})
	registry.Register(&mockConsumer{eventTypes: []string{"planning.task.placed"}})

	assert.Len(t, registry.Consumers("planning.task.placed"), 2)
	assert.Len(t, registry.Consumers("planning.task.failed"), 1)
	assert.Empty(t, registry.Consumers("planning.slot.added"))
	assert.Equal(t, []string{"planning.task.failed", "planning.task.placed"}, registry.Patterns())
}

func TestConsumerRegistry_TopicPatterns(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		match   bool
	}{
		{"planning.task.placed", "planning.task.placed", true},
		{"planning.task.*", "planning.task.placed", true},
		{"planning.*", "planning.task.placed", false},
		{"planning.#", "planning.task.placed", true},
		{"planning.#", "planning", true},
		{"#", "planning.slot.added", true},
		{"*.slot.*", "planning.slot.added", true},
		{"*.slot.*", "planning.task.added", false},
		{"planning.#.added", "planning.slot.added", true},
		{"planning.task", "planning.task.placed", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.key, func(t *testing.T) {
			registry := eventbus.NewConsumerRegistry(quietLogger())
			registry.Register(&mockConsumer{eventTypes: []string{tt.pattern}})

			assert.Equal(t, tt.match, len(registry.Consumers(tt.key)) == 1)
		})
	}
}

func TestConsumerRegistry_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("routes by key", func(t *testing.T) {
		registry := eventbus.NewConsumerRegistry(quietLogger())
		placed := &mockConsumer{eventTypes: []string{"planning.task.placed"}}
		failed := &mockConsumer{eventTypes: []string{"planning.task.failed"}}
		registry.Register(placed)
		registry.Register(failed)

		require.NoError(t, registry.Dispatch(ctx, &eventbus.ConsumedEvent{EventID: uuid.New(), RoutingKey: "planning.task.placed"}))

		assert.Equal(t, 1, placed.received())
		assert.Zero(t, failed.received())
	})

	t.Run("overlapping patterns deliver once", func(t *testing.T) {
		registry := eventbus.NewConsumerRegistry(quietLogger())
		consumer := &mockConsumer{eventTypes: []string{"planning.#", "planning.task.*"}}
		registry.Register(consumer)

		require.NoError(t, registry.Dispatch(ctx, &eventbus.ConsumedEvent{RoutingKey: "planning.task.failed"}))

		assert.Equal(t, 1, consumer.received())
	})

	t.Run("no consumers is not an error", func(t *testing.T) {
		registry := eventbus.NewConsumerRegistry(nil)
		assert.NoError(t, registry.Dispatch(ctx, &eventbus.ConsumedEvent{RoutingKey: "nothing"}))
	})

	t.Run("continues after a failure and joins errors", func(t *testing.T) {
		registry := eventbus.NewConsumerRegistry(quietLogger())
		errBoom := errors.New("boom")
		failing := &mockConsumer{eventTypes: []string{"k"}, err: errBoom}
		healthy := &mockConsumer{eventTypes: []string{"k"}}
		registry.Register(failing)
		registry.Register(healthy)

		err := registry.Dispatch(ctx, &eventbus.ConsumedEvent{RoutingKey: "k"})

		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 1, healthy.received())
	})
}
