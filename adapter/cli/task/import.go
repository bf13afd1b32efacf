package task

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/taskfile"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import tasks from a JSON task file",
	Long: `Import tasks from a JSON array of task objects. Completed tasks are
skipped, as are tasks whose id is already stored.

Examples:
  dayplanner task import tasks.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := taskfile.Decode(f, app.Location)
		if err != nil {
			return err
		}

		batch := commands.ImportTasksCommand{}
		completed := 0
		for _, r := range records {
			if r.Completed {
				completed++
				continue
			}
			batch.Tasks = append(batch.Tasks, commands.AddTaskCommand{
				ID:            r.ID,
				Name:          r.Name,
				Duration:      r.Duration,
				Importance:    r.Importance,
				Deadline:      r.Deadline,
				EarliestStart: r.EarliestStart,
				Note:          r.Note,
				Splittable:    r.Splittable,
			})
		}

		result, err := app.ImportTasksHandler.Handle(cmd.Context(), batch)
		if err != nil {
			return fmt.Errorf("failed to import tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Imported %d task(s)\n", len(result.Imported))
		if n := len(result.Skipped) + completed; n > 0 {
			fmt.Fprintf(out, "  skipped: %d (already stored or completed)\n", n)
		}
		return nil
	},
}
