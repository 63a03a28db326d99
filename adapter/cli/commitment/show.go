package commitment

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show [commitment-id]",
	Short: "Show a commitment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetCommitmentHandler == nil {
			return cli.ErrNotInitialized
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		c, err := app.GetCommitmentHandler.Handle(cmd.Context(), queries.GetCommitmentQuery{
			ID:     id,
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to get commitment: %w", err)
		}

		cli.RenderCommitment(cmd.OutOrStdout(), *c)
		return nil
	},
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid commitment ID: %w", err)
	}
	return id, nil
}
