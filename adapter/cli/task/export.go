package task

import (
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/taskfile"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export tasks to a JSON task file",
	Long: `Export every task as a JSON task file. Without a file, or with "-",
the file is written to standard output.

Examples:
  dayplanner task export backup.json
  dayplanner task export > tasks.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), queries.ListTasksQuery{})
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		records := make([]taskfile.Record, len(tasks))
		for i, t := range tasks {
			records[i] = taskfile.Record{
				ID:            t.ID,
				Name:          t.Name,
				Duration:      t.Duration,
				Importance:    t.Importance,
				Deadline:      t.Deadline,
				EarliestStart: t.EarliestStart,
				Note:          t.Note,
				Splittable:    t.Splittable,
			}
		}

		var w io.Writer = cmd.OutOrStdout()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if err := taskfile.Encode(w, records, app.Location); err != nil {
			return err
		}
		if len(args) == 1 && args[0] != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s) to %s\n", len(records), args[0])
		}
		return nil
	},
}
