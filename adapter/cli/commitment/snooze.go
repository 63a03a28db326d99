package commitment

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

var snoozeCmd = &cobra.Command{
	Use:   "snooze [commitment-id]",
	Short: "Push a deadline back by an hour",
	Long: fmt.Sprintf(`Push a deadline back by an hour. A commitment can be snoozed at most %d times;
after that, reschedule it instead.`, commitment.MaxSnoozes),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SnoozeCommitmentHandler == nil {
			return cli.ErrNotInitialized
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		c, err := app.SnoozeCommitmentHandler.Handle(ctx, commands.SnoozeCommitmentCommand{
			ID:            id,
			UserID:        app.CurrentUserID,
			CorrelationID: observability.CorrelationIDFromContext(ctx),
		})
		if err != nil {
			return fmt.Errorf("failed to snooze commitment: %w", err)
		}

		dto := queries.ToCommitmentDTO(c, *c.LastSnoozedAt(), app.Location)
		fmt.Fprintf(cmd.OutOrStdout(), "Snoozed until %s (%d of %d)\n", dto.DeadlineHuman, c.SnoozeCount(), commitment.MaxSnoozes)
		return nil
	},
}
