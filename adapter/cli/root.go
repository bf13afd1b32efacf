package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/dayplanner/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	verbose  bool
	logger   *slog.Logger
	logLevel *slog.LevelVar
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dayplanner",
	Short: "dayplanner - fit a task backlog into the free time of your days",
	Long: `dayplanner keeps a backlog of tasks with an estimated duration and an
importance, and places them into the free gaps of your days around meals,
courses and other fixed commitments.

Tasks are placed by importance, then deadline, at the earliest time that
fits. A plan can span several days.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		if verbose && logLevel != nil {
			logLevel.Set(slog.LevelDebug)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
		logger.InfoContext(ctx, "command start",
			"command", cmd.CommandPath(),
		)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if a := GetApp(); a != nil && a.Outbox != nil {
			n, err := a.Outbox.Drain(ctx)
			if err != nil {
				logger.WarnContext(ctx, "outbox drain failed", "error", err)
			} else if n > 0 {
				logger.DebugContext(ctx, "outbox drained", "published", n)
			}
		}
		info, ok := ctx.Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.InfoContext(ctx, "command end",
			"command", cmd.CommandPath(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return exitCode(err)
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger. When level is not nil, --verbose lowers
// it to debug.
func SetLogger(l *slog.Logger, level *slog.LevelVar) {
	logger = l
	logLevel = level
}
