package commitment

import (
	"github.com/spf13/cobra"
)

// Cmd is the commitment command group
var Cmd = &cobra.Command{
	Use:     "commitment",
	Aliases: []string{"c"},
	Short:   "Manage commitments",
	Long:    `Record, list, complete, snooze, and reschedule the promises you make.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(snoozeCmd)
	Cmd.AddCommand(rescheduleCmd)
	Cmd.AddCommand(exportCmd)
}
