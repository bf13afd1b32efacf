package plan

import (
	"fmt"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/spf13/cobra"
)

var (
	runFrom     string
	runDays     int
	runSplit    bool
	runMinChunk string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Place unscheduled and failed tasks",
	Long: `Place every unscheduled or failed task into the free time of the
horizon. Tasks go by importance, then deadline, each at the earliest start
that fits. Tasks placed by earlier runs keep their time.

Examples:
  dayplanner plan run
  dayplanner plan run --from tomorrow --days 3
  dayplanner plan run --split --min-chunk 45m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		start, err := cli.ParseDate(runFrom, app.Today())
		if err != nil {
			return err
		}
		days := runDays
		if !cmd.Flags().Changed("days") {
			days = max(app.HorizonDays, 1)
		}
		split := app.Split
		if cmd.Flags().Changed("split") {
			split = runSplit
		}
		minChunk := app.MinChunk
		if runMinChunk != "" {
			if minChunk, err = cli.ParseDuration(runMinChunk); err != nil {
				return err
			}
		}

		result, err := app.PlanHorizonHandler.Handle(cmd.Context(), commands.PlanHorizonCommand{
			Start:    start,
			Days:     days,
			Split:    split,
			MinChunk: minChunk,
		})
		if err != nil {
			return fmt.Errorf("failed to plan: %w", err)
		}

		out := cmd.OutOrStdout()
		alloc := result.Allocation
		fmt.Fprintf(out, "Planned %d task(s): %d scheduled, %d failed\n",
			len(alloc.Outcomes), alloc.Scheduled(), alloc.Failed())
		for _, o := range alloc.Failures() {
			fmt.Fprintf(out, "  could not place %q: %s\n", o.Name, describe(o.Reason))
		}
		for _, tl := range result.Timelines {
			fmt.Fprintln(out)
			fmt.Fprint(out, tl.Render())
		}
		return nil
	},
}

func describe(reason domain.FailureReason) string {
	switch reason {
	case domain.ReasonDeadlineUnreachable:
		return "no free interval ends before the deadline"
	case domain.ReasonNoCapacity:
		return "no free interval is long enough"
	default:
		return string(reason)
	}
}

func init() {
	runCmd.Flags().StringVar(&runFrom, "from", "", "first day, YYYY-MM-DD, today or tomorrow (default today)")
	runCmd.Flags().IntVar(&runDays, "days", 1, "number of days to plan (default PLAN_HORIZON_DAYS)")
	runCmd.Flags().BoolVar(&runSplit, "split", false, "split splittable tasks that fit no single gap")
	runCmd.Flags().StringVar(&runMinChunk, "min-chunk", "", "smallest part of a split task, e.g. 30m")
}
