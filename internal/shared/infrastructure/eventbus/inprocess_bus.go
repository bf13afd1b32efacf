package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// InProcessEventBus is the publisher used when no broker is configured. It
// decodes each envelope and hands it to local consumers on the calling
// goroutine, one event at a time.
type InProcessEventBus struct {
	mu       sync.Mutex
	registry *ConsumerRegistry
	logger   *slog.Logger
}

func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{registry: NewConsumerRegistry(logger), logger: logger}
}

func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

func (b *InProcessEventBus) Registry() *ConsumerRegistry {
	return b.registry
}

// Publish never fails. Local subscribers only observe events, so a bad
// envelope or a failing consumer is logged and the message still counts
// as delivered.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	log := b.logger.With("routing_key", routingKey)

	var event ConsumedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Error("dropping undecodable envelope", "error", err)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}

	b.mu.Lock()
	err := b.registry.Dispatch(ctx, &event)
	b.mu.Unlock()

	if err != nil {
		log.Error("local consumer failed", "event_id", event.EventID, "error", err)
	}
	return nil
}

func (b *InProcessEventBus) Close() error {
	return nil
}
