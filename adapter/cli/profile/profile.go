package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/felixgeelhaar/dayplanner/adapter/cli"
	dayprofile "github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/profile"
	"github.com/spf13/cobra"
)

// Cmd is the profile command group
var Cmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or create the day profile",
	Long: `The day profile sets the waking window, the meals and the weekly course
timetable every new day starts from. Values in the profile file can be
overridden with DAYPLANNER_PROFILE_* environment variables.`,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active day profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		p := app.Profile

		out := cmd.OutOrStdout()
		source := app.ProfilePath
		if _, err := os.Stat(source); errors.Is(err, fs.ErrNotExist) {
			source += " (not found, using defaults)"
		}
		fmt.Fprintf(out, "Profile: %s\n", source)
		fmt.Fprintf(out, "  wake up:   %s\n", p.WakeUp)
		fmt.Fprintf(out, "  sleep:     %s\n", p.Sleep)
		fmt.Fprintf(out, "  breakfast: %s\n", p.Breakfast)
		fmt.Fprintf(out, "  lunch:     %s\n", p.Lunch)
		fmt.Fprintf(out, "  dinner:    %s\n", p.Dinner)
		fmt.Fprintf(out, "  timezone:  %s\n", app.Location)

		days := make([]string, 0, len(p.Courses))
		for d := range p.Courses {
			days = append(days, d)
		}
		sort.Strings(days)
		for _, d := range days {
			n, err := strconv.Atoi(d)
			if err != nil || n < 0 || n > 6 {
				continue
			}
			for _, c := range p.Courses[d] {
				fmt.Fprintf(out, "  %-9s  %s-%s  %s\n", time.Weekday((n+1)%7), c.Start, c.End, c.Name)
			}
		}
		if len(p.Overrides) > 0 {
			fmt.Fprintf(out, "  %d day override(s)\n", len(p.Overrides))
		}
		return nil
	},
}

var force bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default profile to the profile path",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		if _, err := os.Stat(app.ProfilePath); err == nil && !force {
			return fmt.Errorf("profile %s already exists (use --force to overwrite)", app.ProfilePath)
		}
		if err := dayprofile.Save(app.ProfilePath, dayprofile.Default()); err != nil {
			return fmt.Errorf("failed to write profile: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile written to %s\n", app.ProfilePath)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing profile")

	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(initCmd)
}
