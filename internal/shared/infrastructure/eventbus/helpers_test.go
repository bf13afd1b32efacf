package eventbus_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/eventbus"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockConsumer struct {
	mu         sync.Mutex
	eventTypes []string
	events     []*eventbus.ConsumedEvent
	err        error
}

func (c *mockConsumer) EventTypes() []string {
	return c.eventTypes
}

func (c *mockConsumer) Handle(_ context.Context, event *eventbus.ConsumedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return c.err
}

func (c *mockConsumer) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

type stubPublisher struct {
	mu     sync.Mutex
	err    error
	calls  int
	closed bool
}

func (p *stubPublisher) Publish(context.Context, string, []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

func (p *stubPublisher) Close() error {
	p.closed = true
	return nil
}
