package commitment

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

var status string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List commitments",
	Long: `List commitments, latest deadline first.

Examples:
  vouch commitment list
  vouch commitment list --status pending`,
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListCommitmentsHandler == nil {
			return cli.ErrNotInitialized
		}

		list, err := app.ListCommitmentsHandler.Handle(cmd.Context(), queries.ListCommitmentsQuery{
			UserID: app.CurrentUserID,
			Status: status,
		})
		if err != nil {
			return fmt.Errorf("failed to list commitments: %w", err)
		}

		cli.RenderCommitments(cmd.OutOrStdout(), list)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&status, "status", "s", "", "filter by status (pending, completed, rescheduled, all)")
}
