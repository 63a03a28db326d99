package trust

import (
	"github.com/spf13/cobra"
)

// Cmd is the trust command group
var Cmd = &cobra.Command{
	Use:   "trust",
	Short: "See how reliably you keep your word",
}

func init() {
	Cmd.AddCommand(reportCmd)
	Cmd.AddCommand(chasedCmd)
}
