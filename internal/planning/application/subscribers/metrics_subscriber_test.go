package subscribers

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/profile"
	sharedDomain "github.com/felixgeelhaar/dayplanner/internal/shared/domain"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) EventConsumed(routingKey string) { m.Called(routingKey) }
func (m *mockRecorder) TaskFailed(reason string)        { m.Called(reason) }
func (m *mockRecorder) TimePlaced(d time.Duration)      { m.Called(d) }

func publish(t *testing.T, bus *eventbus.InProcessEventBus, event sharedDomain.DomainEvent) {
	t.Helper()
	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)
	envelope, err := msg.Envelope()
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), event.RoutingKey(), envelope))
}

func TestMetricsSubscriber_Handle(t *testing.T) {
	monday := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	t.Run("records placed time", func(t *testing.T) {
		rec := new(mockRecorder)
		rec.On("EventConsumed", domain.RoutingKeyTaskPlaced).Once()
		rec.On("TimePlaced", 90*time.Minute).Once()

		bus := eventbus.NewInProcessEventBus(nil)
		bus.RegisterConsumer(NewMetricsSubscriber(rec, nil))

		tl, err := profile.Default().NewTimeline(monday, nil)
		require.NoError(t, err)
		task, err := domain.NewTask("Read", 90*time.Minute, 3)
		require.NoError(t, err)
		tl.ClearDomainEvents()
		_, err = tl.PlaceTask(task, time.Date(2024, time.January, 15, 8, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		events := tl.PullDomainEvents()
		require.Len(t, events, 1)
		publish(t, bus, events[0])

		rec.AssertExpectations(t)
	})

	t.Run("records failure reasons", func(t *testing.T) {
		rec := new(mockRecorder)
		rec.On("EventConsumed", domain.RoutingKeyTaskFailed).Once()
		rec.On("TaskFailed", string(domain.ReasonDeadlineUnreachable)).Once()

		sub := NewMetricsSubscriber(rec, nil)
		err := sub.Handle(context.Background(), &eventbus.ConsumedEvent{
			EventID:     uuid.New(),
			AggregateID: uuid.New(),
			RoutingKey:  domain.RoutingKeyTaskFailed,
			Payload:     []byte(`{"name":"Report","reason":"DeadlineUnreachable"}`),
		})

		require.NoError(t, err)
		rec.AssertExpectations(t)
	})

	t.Run("only counts other events", func(t *testing.T) {
		rec := new(mockRecorder)
		rec.On("EventConsumed", domain.RoutingKeyTaskCreated).Once()

		sub := NewMetricsSubscriber(rec, nil)
		err := sub.Handle(context.Background(), &eventbus.ConsumedEvent{
			RoutingKey: domain.RoutingKeyTaskCreated,
			Payload:    []byte(`{"name":"Report"}`),
		})

		require.NoError(t, err)
		rec.AssertExpectations(t)
		rec.AssertNotCalled(t, "TaskFailed", mock.Anything)
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		rec := new(mockRecorder)
		rec.On("EventConsumed", domain.RoutingKeyTaskPlaced).Once()

		sub := NewMetricsSubscriber(rec, nil)
		err := sub.Handle(context.Background(), &eventbus.ConsumedEvent{
			RoutingKey: domain.RoutingKeyTaskPlaced,
			Payload:    []byte(`{"start_time":`),
		})

		assert.Error(t, err)
	})
}

func TestMetricsSubscriber_EventTypes(t *testing.T) {
	sub := NewMetricsSubscriber(new(mockRecorder), nil)
	assert.Contains(t, sub.EventTypes(), domain.RoutingKeyTaskFailed)
	assert.Len(t, sub.EventTypes(), 5)
}
