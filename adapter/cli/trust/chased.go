package trust

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	domain "github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

var (
	details      string
	commitmentID string
)

var chasedCmd = &cobra.Command{
	Use:   "chased",
	Short: "Note that someone had to chase you",
	Long: `Record that someone had to remind you about a promise.

Examples:
  vouch trust chased
  vouch trust chased --commitment 3f2a... --details "pinged on slack"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.LogTrustEventHandler == nil {
			return cli.ErrNotInitialized
		}

		ctx := cmd.Context()
		logCmd := commands.LogTrustEventCommand{
			UserID:        app.CurrentUserID,
			Type:          domain.EventChased.String(),
			Details:       details,
			CorrelationID: observability.CorrelationIDFromContext(ctx),
		}
		if commitmentID != "" {
			id, err := uuid.Parse(commitmentID)
			if err != nil {
				return fmt.Errorf("invalid commitment ID: %w", err)
			}
			logCmd.CommitmentID = &id
		}

		ev, err := app.LogTrustEventHandler.Handle(ctx, logCmd)
		if err != nil {
			return fmt.Errorf("failed to log trust event: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged: chased on %s\n", ev.EventDate().In(app.Location).Format("Mon Jan 2 at 3:04 PM"))
		return nil
	},
}

func init() {
	chasedCmd.Flags().StringVar(&details, "details", "", "what happened")
	chasedCmd.Flags().StringVar(&commitmentID, "commitment", "", "the commitment you were chased about")
}
