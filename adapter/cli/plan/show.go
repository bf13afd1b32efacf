package plan

import (
	"fmt"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/queries"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the schedule of a day",
	Long: `Show the fixed slots, placed tasks and free gaps of a day in time order.

Examples:
  dayplanner plan show
  dayplanner plan show tomorrow
  dayplanner plan show 2024-01-16`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		var arg string
		if len(args) == 1 {
			arg = args[0]
		}
		date, err := cli.ParseDate(arg, app.Today())
		if err != nil {
			return err
		}

		tl, err := app.GetTimelineHandler.Handle(cmd.Context(), queries.GetTimelineQuery{Date: date})
		if err != nil {
			return fmt.Errorf("failed to get timeline: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, tl.Rendered)
		if !tl.Exists {
			fmt.Fprintln(out, "(not planned yet)")
		}
		fmt.Fprintf(out, "Free: %s in %d gap(s)\n", minutes(tl.FreeMins), len(tl.Free))
		return nil
	},
}
