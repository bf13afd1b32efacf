package task

import (
	"fmt"
	"text/tabwriter"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/spf13/cobra"
)

var statuses []string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks, optionally filtered by status.

Examples:
  dayplanner task list
  dayplanner task list --status unscheduled --status failed`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		query := queries.ListTasksQuery{}
		for _, s := range statuses {
			st, err := domain.ParseStatus(s)
			if err != nil {
				return err
			}
			query.Statuses = append(query.Statuses, st)
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDURATION\tIMPORTANCE\tDEADLINE\tSTATUS")
		for _, t := range tasks {
			due := "-"
			if t.Deadline != nil {
				due = t.Deadline.In(app.Location).Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				t.ID, t.Name, cli.FormatDuration(t.Duration), t.Importance, due, t.Status)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d task(s)\n", len(tasks))
		return nil
	},
}

func init() {
	listCmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "filter by status (unscheduled, scheduled, failed)")
}
