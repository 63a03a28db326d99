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
	who  string
	what string
	when string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a promise",
	Long: `Record a promise you made to someone. The deadline is plain language.

Examples:
  vouch commitment add --who Alice --what "send the deck" --when friday
  vouch commitment add --who Bob --what "review PR" --when "tomorrow at 3pm"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateCommitmentHandler == nil {
			return cli.ErrNotInitialized
		}

		ctx := cmd.Context()
		result, err := app.CreateCommitmentHandler.Handle(ctx, commands.CreateCommitmentCommand{
			UserID:        app.CurrentUserID,
			Who:           who,
			What:          what,
			When:          when,
			CorrelationID: observability.CorrelationIDFromContext(ctx),
		})
		if err != nil {
			return fmt.Errorf("failed to record commitment: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Commitment recorded:")
		cli.RenderCommitment(out, queries.ToCommitmentDTO(result.Commitment, result.Commitment.CreatedAt(), app.Location))
		if cli.Verbose() {
			fmt.Fprintf(out, "  read by:  %s %s\n", result.Resolution.Stage, result.Resolution.Rule)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&who, "who", "", "who the promise was made to")
	addCmd.Flags().StringVar(&what, "what", "", "what was promised")
	addCmd.Flags().StringVar(&when, "when", "", "when it is due, e.g. \"friday\" or \"tomorrow at 3pm\"")
	_ = addCmd.MarkFlagRequired("who")
	_ = addCmd.MarkFlagRequired("what")
	_ = addCmd.MarkFlagRequired("when")
}
