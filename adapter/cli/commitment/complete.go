package commitment

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

var completeCmd = &cobra.Command{
	Use:     "complete [commitment-id]",
	Short:   "Mark a commitment as kept",
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteCommitmentHandler == nil {
			return cli.ErrNotInitialized
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		c, err := app.CompleteCommitmentHandler.Handle(ctx, commands.CompleteCommitmentCommand{
			ID:            id,
			UserID:        app.CurrentUserID,
			CorrelationID: observability.CorrelationIDFromContext(ctx),
		})
		if err != nil {
			return fmt.Errorf("failed to complete commitment: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Kept your word to %s: %s\n", c.Who(), c.What())
		return nil
	},
}
