package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/adapter/cli/plan"
	"github.com/felixgeelhaar/dayplanner/adapter/cli/profile"
	"github.com/felixgeelhaar/dayplanner/adapter/cli/slot"
	"github.com/felixgeelhaar/dayplanner/adapter/cli/task"
	"github.com/felixgeelhaar/dayplanner/internal/app"
	"github.com/felixgeelhaar/dayplanner/pkg/config"
	"github.com/felixgeelhaar/dayplanner/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	level := new(slog.LevelVar)
	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.ServiceVersion = cli.Version
	logCfg.LevelVar = level
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger, level)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}

	cliApp, err := cli.NewApp(container)
	if err != nil {
		logger.Error("failed to initialize CLI", "error", err)
		os.Exit(1)
	}
	cli.SetApp(cliApp)

	cli.AddCommand(task.Cmd)
	cli.AddCommand(slot.Cmd)
	cli.AddCommand(plan.Cmd)
	cli.AddCommand(profile.Cmd)

	code := cli.Execute(ctx)
	container.Close()
	stop()
	os.Exit(code)
}
