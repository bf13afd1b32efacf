package task

import (
	"fmt"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/commands"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove [task-id]",
	Short:   "Delete a task and free its time",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if err := app.DeleteTaskHandler.Handle(cmd.Context(), commands.DeleteTaskCommand{TaskID: id}); err != nil {
			return fmt.Errorf("failed to remove task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task removed: %s\n", id)
		return nil
	},
}
