package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/internal/app"
	mcpinternal "github.com/felixgeelhaar/vouch/internal/mcp"
	"github.com/felixgeelhaar/vouch/pkg/config"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := observability.NewLogger(observability.LogConfig{
			Level:       cfg.LogLevel,
			Format:      cfg.LogFormat,
			Output:      cmd.OutOrStdout(),
			ServiceName: "vouch-mcp",
		})

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()

		cliApp := mcpinternal.NewCLIApp(container, cfg.UserID)
		err = mcpinternal.Serve(ctx, cfg, cliApp, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
