package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultConsumerQueue = "dayplanner.worker"

var (
	errConsumerRunning = errors.New("consumer already running")
	errDeliveryClosed  = errors.New("delivery channel closed by broker")
)

// settlement is what happens to a delivery once dispatch has run.
type settlement int

const (
	settleAck settlement = iota
	settleRequeue
	settleDrop
)

// settle decodes body and dispatches it. Undecodable bodies are dropped.
// A failing dispatch is requeued once and dropped when it fails again on
// redelivery, so one poisoned event cannot stall the queue.
func settle(ctx context.Context, registry *ConsumerRegistry, body []byte, routingKey string, redelivered bool) (settlement, *ConsumedEvent, error) {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(body, event); err != nil {
		return settleDrop, nil, fmt.Errorf("decode envelope: %w", err)
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}
	if err := registry.Dispatch(ctx, event); err != nil {
		if redelivered {
			return settleDrop, event, err
		}
		return settleRequeue, event, err
	}
	return settleAck, event, nil
}

type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Exchange  string
	// Prefetch bounds unacknowledged deliveries; zero means one.
	Prefetch int
	Logger   *slog.Logger
}

// RabbitMQConsumer drains a durable queue bound to the planner exchange.
// At start the queue is bound with every pattern in the registry.
type RabbitMQConsumer struct {
	cfg      RabbitMQConsumerConfig
	conn     *amqp.Connection
	channel  *amqp.Channel
	registry *ConsumerRegistry
	logger   *slog.Logger
	running  atomic.Bool
	done     chan struct{}
	closed   atomic.Bool
}

func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultConsumerQueue
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	if registry == nil {
		registry = NewConsumerRegistry(cfg.Logger)
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := declareExchange(conn, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &RabbitMQConsumer{
		cfg:      cfg,
		conn:     conn,
		channel:  ch,
		registry: registry,
		logger:   cfg.Logger.With("queue", cfg.QueueName, "exchange", cfg.Exchange),
		done:     make(chan struct{}),
	}, nil
}

// RegisterConsumer must be called before Start; later patterns are not bound.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)
}

func (c *RabbitMQConsumer) bind() error {
	for _, pattern := range c.registry.Patterns() {
		if err := c.channel.QueueBind(c.cfg.QueueName, pattern, c.cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind %q: %w", pattern, err)
		}
	}
	return nil
}

// Start blocks until ctx is done, Close is called or the broker closes the
// delivery channel.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errConsumerRunning
	}
	defer c.running.Store(false)

	if err := c.bind(); err != nil {
		return err
	}
	if err := c.channel.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	deliveries, err := c.channel.Consume(c.cfg.QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consuming events", "patterns", c.registry.Patterns())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errDeliveryClosed
			}
			c.handle(ctx, d)
		}
	}
}

func (c *RabbitMQConsumer) handle(ctx context.Context, d amqp.Delivery) {
	outcome, event, err := settle(ctx, c.registry, d.Body, d.RoutingKey, d.Redelivered)
	log := c.logger.With("routing_key", d.RoutingKey)
	if event != nil {
		log = log.With("event_id", event.EventID)
	}

	var settleErr error
	switch outcome {
	case settleAck:
		log.Debug("event processed")
		settleErr = d.Ack(false)
	case settleRequeue:
		log.Warn("event dispatch failed, requeueing", "error", err)
		settleErr = d.Nack(false, true)
	case settleDrop:
		log.Error("dropping event", "redelivered", d.Redelivered, "error", err)
		settleErr = d.Nack(false, false)
	}
	if settleErr != nil {
		log.Error("failed to settle delivery", "error", settleErr)
	}
}

func (c *RabbitMQConsumer) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	if err := c.channel.Close(); err != nil {
		c.logger.Warn("error closing channel", "error", err)
	}
	return c.conn.Close()
}
