package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/shared/domain"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/eventbus"
)

type ProcessorConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxRetries is the number of failed attempts after which a message is
	// dead-lettered. Zero dead-letters on the first failure.
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// Backoff doubles base for every attempt after the first, capped at ceiling.
func Backoff(base, ceiling time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if ceiling < base {
		ceiling = base
	}
	d := base
	for i := 1; i < attempt; i++ {
		if d >= ceiling/2 {
			return ceiling
		}
		d *= 2
	}
	return d
}

// Metrics receives publish outcomes per routing key.
type Metrics interface {
	OutboxPublished(routingKey string)
	OutboxFailed(routingKey string, deadLettered bool)
}

type noopMetrics struct{}

func (noopMetrics) OutboxPublished(string)    {}
func (noopMetrics) OutboxFailed(string, bool) {}

type ProcessorOption func(*Processor)

func WithMetrics(m Metrics) ProcessorOption {
	return func(p *Processor) {
		if m != nil {
			p.metrics = m
		}
	}
}

// Processor relays outbox messages to a publisher. The worker runs it as a
// polling loop; the CLI calls Drain once per command.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   Metrics
	tracker   tracker

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultProcessorConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	p := &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   noopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the polling loop. It is a no-op when already running.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.poll(loopCtx, p.done)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
	return nil
}

// Stop cancels the loop and waits for the batch in flight.
func (p *Processor) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("outbox processor stopped")
}

func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Processor) poll(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.relay(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

// ProcessOnce relays a single batch.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	_, err := p.relay(ctx)
	return err
}

// Drain relays batches until one publishes nothing and returns the number
// of messages published.
func (p *Processor) Drain(ctx context.Context) (int, error) {
	total := 0
	for ctx.Err() == nil {
		n, err := p.relay(ctx)
		total += n
		if err != nil || n == 0 {
			return total, err
		}
	}
	return total, ctx.Err()
}

func (p *Processor) relay(ctx context.Context) (int, error) {
	batch, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.tracker.fail(err, false, false)
		return 0, err
	}
	p.tracker.polled(batch)

	published := 0
	for _, msg := range batch {
		if err := p.publish(ctx, msg); err != nil {
			p.reschedule(ctx, msg, err)
			continue
		}
		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			p.logger.Error("failed to mark message as published",
				"id", msg.ID,
				"event_id", msg.EventID,
				"error", err,
			)
			continue
		}
		published++
		p.tracker.published()
		p.metrics.OutboxPublished(msg.RoutingKey)
	}
	return published, nil
}

func (p *Processor) publish(ctx context.Context, msg *Message) error {
	body, err := msg.Envelope()
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, msg.RoutingKey, body)
}

// reschedule records a failed attempt, dead-lettering the message once it
// has used up its retries.
func (p *Processor) reschedule(ctx context.Context, msg *Message, cause error) {
	attempt := msg.RetryCount + 1
	dead := attempt >= p.config.MaxRetries

	var meta domain.EventMetadata
	_ = json.Unmarshal(msg.Metadata, &meta)
	p.logger.Warn("failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"correlation_id", meta.CorrelationID,
		"attempt", attempt,
		"dead_lettered", dead,
		"error", cause,
	)
	p.tracker.fail(cause, true, dead)
	p.metrics.OutboxFailed(msg.RoutingKey, dead)

	var err error
	if dead {
		err = p.repo.MarkDead(ctx, msg.ID, cause.Error())
	} else {
		next := time.Now().Add(Backoff(p.config.RetryBackoffBase, p.config.RetryBackoffMax, attempt))
		err = p.repo.MarkFailed(ctx, msg.ID, cause.Error(), next)
	}
	if err != nil {
		p.logger.Error("failed to record publish failure", "id", msg.ID, "error", err)
	}
}

func (p *Processor) GetStats() Stats {
	s := p.tracker.snapshot()
	s.IsRunning = p.IsRunning()
	return s
}
