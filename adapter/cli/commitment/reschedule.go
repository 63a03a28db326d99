package commitment

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

var (
	rescheduleTo     string
	rescheduleReason string
)

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule [commitment-id]",
	Short: "Move a promise to a new deadline",
	Long: `Close a commitment as rescheduled and carry it forward to a new deadline.
Rescheduling is recorded in the trust log.

Examples:
  vouch commitment reschedule 3f2a... --to "next week" --reason "waiting on data"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RescheduleCommitmentHandler == nil {
			return cli.ErrNotInitialized
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.RescheduleCommitmentHandler.Handle(ctx, commands.RescheduleCommitmentCommand{
			ID:            id,
			UserID:        app.CurrentUserID,
			When:          rescheduleTo,
			Reason:        rescheduleReason,
			CorrelationID: observability.CorrelationIDFromContext(ctx),
		})
		if err != nil {
			return fmt.Errorf("failed to reschedule commitment: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Rescheduled. New commitment:")
		cli.RenderCommitment(out, queries.ToCommitmentDTO(result.Forwarded, result.Forwarded.CreatedAt(), app.Location))
		return nil
	},
}

func init() {
	rescheduleCmd.Flags().StringVar(&rescheduleTo, "to", "", "new deadline, in plain language")
	rescheduleCmd.Flags().StringVar(&rescheduleReason, "reason", "", "why the deadline moved")
	_ = rescheduleCmd.MarkFlagRequired("to")
}
