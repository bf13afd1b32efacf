// Package subscribers reacts to planning events delivered by the event bus.
package subscribers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/eventbus"
)

// Recorder receives the measurements derived from planning events.
type Recorder interface {
	EventConsumed(routingKey string)
	TaskFailed(reason string)
	TimePlaced(d time.Duration)
}

// MetricsSubscriber turns planning events into metrics.
type MetricsSubscriber struct {
	recorder Recorder
	logger   *slog.Logger
}

func NewMetricsSubscriber(recorder Recorder, logger *slog.Logger) *MetricsSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsSubscriber{recorder: recorder, logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *MetricsSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyTaskCreated,
		domain.RoutingKeyTaskPlaced,
		domain.RoutingKeyTaskFailed,
		domain.RoutingKeyTaskUnscheduled,
		domain.RoutingKeySlotAdded,
	}
}

// Handle processes an event. A payload that cannot be decoded is an error
// so the broker can dead-letter it.
func (s *MetricsSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	s.recorder.EventConsumed(event.RoutingKey)

	switch event.RoutingKey {
	case domain.RoutingKeyTaskFailed:
		var payload domain.TaskFailed
		if err := event.Decode(&payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.RoutingKey, err)
		}
		s.recorder.TaskFailed(payload.Reason)
		s.logger.DebugContext(ctx, "task failure recorded",
			"task_id", event.AggregateID,
			"reason", payload.Reason,
		)
	case domain.RoutingKeyTaskPlaced:
		var payload domain.TaskPlaced
		if err := event.Decode(&payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.RoutingKey, err)
		}
		if d := payload.EndTime.Sub(payload.StartTime); d > 0 {
			s.recorder.TimePlaced(d)
		}
	}
	return nil
}
