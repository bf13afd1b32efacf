package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/dayplanner/adapter/httpapi"
	"github.com/felixgeelhaar/dayplanner/internal/app"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/subscribers"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/dayplanner/pkg/config"
	"github.com/felixgeelhaar/dayplanner/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv("dayplanner-worker")
	logger.Info("starting dayplanner worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := observability.InitTracer(ctx, "dayplanner-worker", cfg.OTelEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		shutdownTracer = func() {}
	}
	defer shutdownTracer()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if cfg.OutboxProcessorEnabled {
		if err := container.OutboxProcessor.Start(ctx); err != nil {
			logger.Error("failed to start outbox processor", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("outbox processor disabled")
	}

	if cfg.RabbitMQURL != "" {
		startConsumer(ctx, cfg, container, logger)
	}

	if cfg.OutboxCleanupInterval > 0 {
		go cleanupOutbox(ctx, cfg, container, logger)
	}

	ready := observability.NewReadiness(2 * time.Second)
	ready.Require("database", container.DBConn.Ping)
	if container.RedisClient != nil {
		ready.Prefer("redis", func(ctx context.Context) error {
			return container.RedisClient.Ping(ctx).Err()
		})
	}

	if cfg.WorkerHealthAddr != "" {
		srv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           httpapi.NewRouter(container.OutboxProcessor, ready, container.Registry, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down worker")
	container.OutboxProcessor.Stop()
}

// startConsumer counts events that arrive through the broker, so metrics
// cover events published by every CLI process.
func startConsumer(ctx context.Context, cfg *config.Config, c *app.Container, logger *slog.Logger) {
	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:       cfg.RabbitMQURL,
		QueueName: cfg.RabbitMQQueue,
		Exchange:  cfg.RabbitMQExchange,
		Logger:    logger,
	}, nil)
	if err != nil {
		logger.Warn("RabbitMQ consumer not available", "error", err)
		return
	}
	consumer.RegisterConsumer(subscribers.NewMetricsSubscriber(c.Metrics, logger))

	go func() {
		defer func() { _ = consumer.Close() }()
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("RabbitMQ consumer stopped", "error", err)
		}
	}()
}

func cleanupOutbox(ctx context.Context, cfg *config.Config, c *app.Container, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.OutboxCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := c.OutboxRepo.DeleteOld(ctx, time.Now().Add(-cfg.OutboxRetention()))
			if err != nil {
				logger.Error("outbox cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("outbox cleanup completed", "deleted", deleted, "retention_days", cfg.OutboxRetentionDays)
			}
		}
	}
}
