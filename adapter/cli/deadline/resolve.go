package deadline

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

var strict bool

// Cmd previews how a deadline phrase would be read.
var Cmd = &cobra.Command{
	Use:   "resolve [text]",
	Short: "Preview how a deadline would be read",
	Long: `Show the instant a plain-language deadline resolves to and which stage read it.

Examples:
  vouch resolve friday
  vouch resolve "end of month" --strict`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ResolveDeadlineHandler == nil {
			return cli.ErrNotInitialized
		}

		res, err := app.ResolveDeadlineHandler.Handle(cmd.Context(), queries.ResolveDeadlineQuery{
			Text:   strings.Join(args, " "),
			Strict: strict,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s -> %s\n", res.Input, res.Human)
		fmt.Fprintf(out, "  at:    %s\n", res.At.Format("2006-01-02 15:04 MST"))
		fmt.Fprintf(out, "  stage: %s\n", res.Stage)
		if res.Rule != "" {
			fmt.Fprintf(out, "  rule:  %s\n", res.Rule)
		}
		return nil
	},
}

func init() {
	Cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of guessing when no calendar rule matches")
}
