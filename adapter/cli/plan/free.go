package plan

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/queries"
	"github.com/spf13/cobra"
)

var (
	freeFrom string
	freeDays int
)

var freeCmd = &cobra.Command{
	Use:   "free",
	Short: "List the free time left in the horizon",
	Long: `List every free gap of the horizon with the total per day.

Examples:
  dayplanner plan free
  dayplanner plan free --from 2024-01-15 --days 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		start, err := cli.ParseDate(freeFrom, app.Today())
		if err != nil {
			return err
		}
		days := freeDays
		if !cmd.Flags().Changed("days") {
			days = max(app.HorizonDays, 1)
		}

		result, err := app.AvailableSlotsHandler.Handle(cmd.Context(), queries.AvailableSlotsQuery{Start: start, Days: days})
		if err != nil {
			return fmt.Errorf("failed to list free time: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, day := range result.Days {
			fmt.Fprintf(out, "%s  %s free\n", day.Date.Format("Mon 2006-01-02"), minutes(day.FreeMins))
			for _, s := range day.Slots {
				fmt.Fprintf(out, "  %s - %s  %s\n", s.StartTime.Format("15:04"), s.EndTime.Format("15:04"), minutes(s.DurationMin))
			}
		}
		fmt.Fprintf(out, "Total: %s\n", minutes(result.TotalMins))
		return nil
	},
}

func minutes(n int) string {
	return cli.FormatDuration(time.Duration(n) * time.Minute)
}

func init() {
	freeCmd.Flags().StringVar(&freeFrom, "from", "", "first day, YYYY-MM-DD, today or tomorrow (default today)")
	freeCmd.Flags().IntVar(&freeDays, "days", 1, "number of days (default PLAN_HORIZON_DAYS)")
}
