package commitment

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/internal/commitments/infrastructure/calendar"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export pending commitments as an iCalendar file",
	Long: `Write pending commitments as calendar events ending at their deadlines.

Examples:
  vouch commitment export > promises.ics
  vouch commitment export --out ~/promises.ics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListCommitmentsHandler == nil {
			return cli.ErrNotInitialized
		}

		now := time.Now()
		list, err := app.ListCommitmentsHandler.Handle(cmd.Context(), queries.ListCommitmentsQuery{
			UserID: app.CurrentUserID,
			Status: "pending",
			Now:    now,
		})
		if err != nil {
			return fmt.Errorf("failed to list commitments: %w", err)
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No pending commitments to export.")
			return nil
		}

		var out io.Writer = cmd.OutOrStdout()
		if exportPath != "" {
			f, err := os.Create(exportPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return calendar.Encode(out, list, now)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "", "write to a file instead of stdout")
}
