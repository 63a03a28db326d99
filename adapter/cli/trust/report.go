package trust

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

var asJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise this week's promises",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.TrustReportHandler == nil {
			return cli.ErrNotInitialized
		}

		report, err := app.TrustReportHandler.Handle(cmd.Context(), queries.TrustReportQuery{UserID: app.CurrentUserID})
		if err != nil {
			return fmt.Errorf("failed to build trust report: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		cli.RenderTrustReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
}
