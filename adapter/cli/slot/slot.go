package slot

import (
	"fmt"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/queries"
	"github.com/spf13/cobra"
)

// Cmd is the slot command group
var Cmd = &cobra.Command{
	Use:   "slot",
	Short: "Manage fixed commitments",
	Long:  `Block time on a day for appointments and other commitments tasks must not overlap.`,
}

var (
	slotDate  string
	slotStart string
	slotEnd   string
)

var addCmd = &cobra.Command{
	Use:   "add [description]",
	Short: "Block an interval on a day",
	Long: `Block an interval for a fixed commitment. The interval must lie inside
the waking window and must not overlap anything already on the day.

Examples:
  dayplanner slot add "Dentist" --start 14:00 --end 15:00
  dayplanner slot add "Seminar" --date 2024-01-16 --start 09:00 --end 10:30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		date, err := cli.ParseDate(slotDate, app.Today())
		if err != nil {
			return err
		}
		start, err := cli.ParseClock(slotStart, date)
		if err != nil {
			return err
		}
		end, err := cli.ParseClock(slotEnd, date)
		if err != nil {
			return err
		}

		result, err := app.AddFixedSlotHandler.Handle(cmd.Context(), commands.AddFixedSlotCommand{
			Date:        date,
			Start:       start,
			End:         end,
			Description: args[0],
		})
		if err != nil {
			return fmt.Errorf("failed to add slot: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Slot added on %s: %s - %s  %s\n",
			date.Format("2006-01-02"),
			result.Slot.Interval.Start.Format("15:04"),
			result.Slot.Interval.End.Format("15:04"),
			result.Slot.Description)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [date]",
	Short: "List the fixed commitments of a day",
	Args:  cobra.MaximumNArgs(1),
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
		fmt.Fprintf(out, "Fixed slots on %s\n", tl.Date.Format("Monday 2006-01-02"))
		for _, s := range tl.FixedSlots {
			fmt.Fprintf(out, "  %s - %s  %s\n", s.StartTime.Format("15:04"), s.EndTime.Format("15:04"), s.Label)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&slotDate, "date", "", "day of the slot, YYYY-MM-DD, today or tomorrow (default today)")
	addCmd.Flags().StringVar(&slotStart, "start", "", "start time HH:MM (required)")
	addCmd.Flags().StringVar(&slotEnd, "end", "", "end time HH:MM (required)")
	_ = addCmd.MarkFlagRequired("start")
	_ = addCmd.MarkFlagRequired("end")

	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
}
