package task

import (
	"fmt"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/spf13/cobra"
)

var unscheduleCmd = &cobra.Command{
	Use:   "unschedule [task-id]",
	Short: "Remove a task from every timeline",
	Long: `Remove the placements of a task so the next plan run places it again.

Examples:
  dayplanner task unschedule 6f1c2b8e-0d4a-4e55-9d7e-2f3a9b1c0e12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		result, err := app.UnscheduleTaskHandler.Handle(cmd.Context(), commands.UnscheduleTaskCommand{TaskID: id})
		if err != nil {
			return fmt.Errorf("failed to unschedule task: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Dates) == 0 {
			fmt.Fprintln(out, "Task was not scheduled.")
			return nil
		}
		for _, d := range result.Dates {
			fmt.Fprintf(out, "Removed from %s\n", domain.DateKey(d))
		}
		return nil
	},
}
