package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/subscribers"
	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/locking"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/profile"
	sharedApplication "github.com/felixgeelhaar/dayplanner/internal/shared/application"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/dayplanner/pkg/config"
	"github.com/felixgeelhaar/dayplanner/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis backs the planning lock when configured.
	RedisClient *redis.Client

	Profile *profile.Profile

	// Metrics
	Registry *prometheus.Registry
	Metrics  *observability.PlannerMetrics

	// Repositories
	TaskRepo     domain.TaskRepository
	TimelineRepo domain.TimelineRepository
	OutboxRepo   *outbox.SQLRepository

	UnitOfWork sharedApplication.UnitOfWork
	Locker     locking.Locker

	// Events
	EventBus        *eventbus.InProcessEventBus
	EventPublisher  eventbus.Publisher
	OutboxProcessor *outbox.Processor

	// Command Handlers
	AddTaskHandler        *commands.AddTaskHandler
	ImportTasksHandler    *commands.ImportTasksHandler
	AddFixedSlotHandler   *commands.AddFixedSlotHandler
	PlanHorizonHandler    *commands.PlanHorizonHandler
	UnscheduleTaskHandler *commands.UnscheduleTaskHandler
	DeleteTaskHandler     *commands.DeleteTaskHandler

	// Query Handlers
	GetTimelineHandler    *queries.GetTimelineHandler
	ListTasksHandler      *queries.ListTasksHandler
	AvailableSlotsHandler *queries.AvailableSlotsHandler
}

// NewContainer connects the configured storage, lock and broker and builds
// the planning handlers. Redis and RabbitMQ are optional: in development an
// unreachable service falls back to the in-process implementation.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	p, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return nil, err
	}
	c.Profile = p
	loc, err := p.Location()
	if err != nil {
		return nil, err
	}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}

	factory := NewRepositoryFactory(c.DBConn, loc)
	if c.TaskRepo, err = factory.TaskRepository(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create task repository: %w", err)
	}
	if c.TimelineRepo, err = factory.TimelineRepository(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create timeline repository: %w", err)
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create outbox repository: %w", err)
	}
	c.UnitOfWork = factory.UnitOfWork()

	if err := c.initLocker(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.Registry = prometheus.NewRegistry()
	if c.Metrics, err = observability.NewPlannerMetrics(c.Registry); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     cfg.OutboxPollInterval,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}, logger, outbox.WithMetrics(c.Metrics))

	deps := commands.Deps{
		Tasks:     c.TaskRepo,
		Timelines: c.TimelineRepo,
		Outbox:    c.OutboxRepo,
		UoW:       c.UnitOfWork,
		Locker:    c.Locker,
		Template:  c.Profile,
		LockTTL:   cfg.LockTTL,
		LockWait:  cfg.LockWait,
		Actor:     actor(),
		Logger:    logger,
	}

	c.AddTaskHandler = commands.NewAddTaskHandler(deps)
	c.ImportTasksHandler = commands.NewImportTasksHandler(deps)
	c.AddFixedSlotHandler = commands.NewAddFixedSlotHandler(deps)
	c.PlanHorizonHandler = commands.NewPlanHorizonHandler(deps, c.Metrics)
	c.UnscheduleTaskHandler = commands.NewUnscheduleTaskHandler(deps)
	c.DeleteTaskHandler = commands.NewDeleteTaskHandler(deps)

	c.GetTimelineHandler = queries.NewGetTimelineHandler(c.TimelineRepo, c.Profile)
	c.ListTasksHandler = queries.NewListTasksHandler(c.TaskRepo)
	c.AvailableSlotsHandler = queries.NewAvailableSlotsHandler(c.TimelineRepo, c.Profile)

	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	dbCfg := database.Config{
		Driver:     database.Driver(c.Config.DatabaseDriver),
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
	}
	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()

	applied, err := migrations.Run(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	c.Logger.Debug("connected to database",
		"driver", c.DBDriver,
		"migrations_applied", len(applied),
	)
	return nil
}

func (c *Container) initLocker(ctx context.Context) error {
	c.Locker = locking.NewLocalLocker()
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, planning lock is process-local", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, planning lock is process-local", "error", err)
		return nil
	}
	c.RedisClient = client
	c.Locker = locking.NewRedisLocker(client)
	c.Logger.Debug("connected to Redis")
	return nil
}

// initPublisher publishes to RabbitMQ behind a circuit breaker, or to the
// in-process bus whose metrics subscriber observes every event.
func (c *Container) initPublisher() error {
	c.EventBus = eventbus.NewInProcessEventBus(c.Logger)
	c.EventBus.RegisterConsumer(subscribers.NewMetricsSubscriber(c.Metrics, c.Logger))

	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = c.EventBus
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Config.RabbitMQExchange, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
		c.EventPublisher = c.EventBus
		return nil
	}
	c.EventPublisher = eventbus.NewBreakerPublisher(publisher, eventbus.DefaultBreakerConfig(), c.Logger)
	return nil
}

// Drain publishes every pending outbox message. The CLI calls it before
// exiting so events do not wait for the worker.
func (c *Container) Drain(ctx context.Context) (int, error) {
	if c.OutboxProcessor == nil {
		return 0, nil
	}
	return c.OutboxProcessor.Drain(ctx)
}

// Close releases every connection the container opened.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err, "driver", c.DBDriver)
		}
	}
}

// actor names the local user in event metadata.
func actor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "dayplanner"
}
