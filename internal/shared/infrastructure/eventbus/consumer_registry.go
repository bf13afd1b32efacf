package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// ConsumerRegistry routes envelopes to consumers by topic pattern. Patterns
// follow RabbitMQ topic bindings: words are separated by dots, "*" matches
// exactly one word and "#" matches zero or more, so in-process delivery
// matches what a broker queue bound with the same keys would receive.
type ConsumerRegistry struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

type subscription struct {
	pattern  string
	words    []string
	consumer EventConsumer
}

func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{logger: logger}
}

// Register subscribes consumer to every pattern it declares.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pattern := range consumer.EventTypes() {
		r.subs = append(r.subs, subscription{
			pattern:  pattern,
			words:    strings.Split(pattern, "."),
			consumer: consumer,
		})
		r.logger.Debug("registered consumer", "pattern", pattern)
	}
}

// Consumers returns the consumers whose patterns match routingKey in
// registration order. A consumer matching through several patterns is
// returned once.
func (r *ConsumerRegistry) Consumers(routingKey string) []EventConsumer {
	key := strings.Split(routingKey, ".")

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []EventConsumer
	for _, s := range r.subs {
		if !matchTopic(s.words, key) || slices.Contains(out, s.consumer) {
			continue
		}
		out = append(out, s.consumer)
	}
	return out
}

// Patterns returns the distinct registered patterns, sorted. Broker
// consumers bind their queue with these.
func (r *ConsumerRegistry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns := make([]string, 0, len(r.subs))
	for _, s := range r.subs {
		patterns = append(patterns, s.pattern)
	}
	slices.Sort(patterns)
	return slices.Compact(patterns)
}

// Dispatch hands event to every matching consumer. A failing consumer does
// not stop the others; all failures are joined.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.Consumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for routing key", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed to handle event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func matchTopic(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	switch pattern[0] {
	case "#":
		for i := 0; i <= len(key); i++ {
			if matchTopic(pattern[1:], key[i:]) {
				return true
			}
		}
		return false
	case "*":
		return len(key) > 0 && matchTopic(pattern[1:], key[1:])
	default:
		return len(key) > 0 && pattern[0] == key[0] && matchTopic(pattern[1:], key[1:])
	}
}
