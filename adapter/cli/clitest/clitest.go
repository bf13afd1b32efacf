// Package clitest runs CLI commands against a throwaway SQLite container.
package clitest

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	internalApp "github.com/felixgeelhaar/dayplanner/internal/app"
	"github.com/felixgeelhaar/dayplanner/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// Monday is the date the test clock reports as today.
var Monday = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)

// NewApp wires a container in a temp directory, installs it as the global
// CLI application and removes it again when the test ends.
func NewApp(t testing.TB) *cli.App {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		AppEnv:             "development",
		SQLitePath:         filepath.Join(dir, "dayplanner.db"),
		ProfilePath:        filepath.Join(dir, "profile.yaml"),
		PlanHorizonDays:    1,
		PlanSplitMinChunk:  30 * time.Minute,
		LockTTL:            time.Second,
		LockWait:           time.Second,
		OutboxPollInterval: 10 * time.Millisecond,
		OutboxBatchSize:    50,
		OutboxMaxRetries:   3,
	}

	c, err := internalApp.NewContainer(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	a, err := cli.NewApp(c)
	require.NoError(t, err)
	a.Now = func() time.Time { return Monday.Add(6 * time.Hour) }

	cli.SetApp(a)
	t.Cleanup(func() { cli.SetApp(nil) })
	return a
}

// Run executes cmd with flags and args and returns what it printed. Every
// flag of cmd is reset to its default first.
func Run(t testing.TB, cmd *cobra.Command, flags map[string]string, args ...string) (string, error) {
	t.Helper()
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	})
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value), "flag %s", name)
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

// Find returns the subcommand of group named name.
func Find(t testing.TB, group *cobra.Command, name string) *cobra.Command {
	t.Helper()
	cmd, _, err := group.Find([]string{name})
	require.NoError(t, err)
	return cmd
}
