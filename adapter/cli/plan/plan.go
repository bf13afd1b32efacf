package plan

import (
	"github.com/spf13/cobra"
)

// Cmd is the plan command group
var Cmd = &cobra.Command{
	Use:   "plan",
	Short: "Place tasks into days and inspect the result",
	Long: `Run the allocator over pending tasks, show the schedule of a day and
list the free time that is left.`,
}

func init() {
	Cmd.AddCommand(runCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(freeCmd)
}
