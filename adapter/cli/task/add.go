package task

import (
	"fmt"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/commands"
	"github.com/spf13/cobra"
)

var (
	duration      string
	importance    int
	deadline      string
	earliestStart string
	note          string
	splittable    bool
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a task to the backlog",
	Long: `Add a task with an estimated duration and an importance from 1 to 5.

Examples:
  dayplanner task add "Write report" -d 90 -i 4
  dayplanner task add "Read chapter 3" -d 1h30m --deadline "2024-01-16 17:00"
  dayplanner task add "Lab prep" -d 45 --earliest "2024-01-16 13:00" --splittable=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		d, err := cli.ParseDuration(duration)
		if err != nil {
			return err
		}
		addCmd := commands.AddTaskCommand{
			Name:       args[0],
			Duration:   d,
			Importance: importance,
			Note:       note,
			Splittable: splittable,
		}
		if deadline != "" {
			t, err := cli.ParseDateTime(deadline, app.Location, true)
			if err != nil {
				return fmt.Errorf("deadline: %w", err)
			}
			addCmd.Deadline = &t
		}
		if earliestStart != "" {
			t, err := cli.ParseDateTime(earliestStart, app.Location, false)
			if err != nil {
				return fmt.Errorf("earliest start: %w", err)
			}
			addCmd.EarliestStart = &t
		}

		result, err := app.AddTaskHandler.Handle(cmd.Context(), addCmd)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Task added: %s\n", result.TaskID)
		fmt.Fprintf(out, "  name: %s\n", args[0])
		fmt.Fprintf(out, "  duration: %s\n", cli.FormatDuration(d))
		fmt.Fprintf(out, "  importance: %d\n", importance)
		if addCmd.Deadline != nil {
			fmt.Fprintf(out, "  deadline: %s\n", addCmd.Deadline.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&duration, "duration", "d", "", "estimated duration in minutes or as 1h30m (required)")
	addCmd.Flags().IntVarP(&importance, "importance", "i", 3, "importance from 1 (low) to 5 (high)")
	addCmd.Flags().StringVar(&deadline, "deadline", "", "latest end, YYYY-MM-DD [HH:MM]")
	addCmd.Flags().StringVar(&earliestStart, "earliest", "", "earliest start, YYYY-MM-DD [HH:MM]")
	addCmd.Flags().StringVar(&note, "note", "", "free-form note")
	addCmd.Flags().BoolVar(&splittable, "splittable", true, "allow the task to be split when splitting is enabled")
	_ = addCmd.MarkFlagRequired("duration")
}
