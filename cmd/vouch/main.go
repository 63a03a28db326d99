package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/adapter/cli/commitment"
	"github.com/felixgeelhaar/vouch/adapter/cli/deadline"
	"github.com/felixgeelhaar/vouch/adapter/cli/mcp"
	"github.com/felixgeelhaar/vouch/adapter/cli/serve"
	"github.com/felixgeelhaar/vouch/adapter/cli/trust"
	"github.com/felixgeelhaar/vouch/internal/app"
	"github.com/felixgeelhaar/vouch/pkg/config"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

func main() {
	// Setup logger
	logger := observability.NewLogger(observability.LogConfig{Level: "warn", Output: os.Stderr})

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.IsDevelopment() || cfg.LogLevel == "debug" {
		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.LogLevel,
			Format:      cfg.LogFormat,
			Output:      os.Stderr,
			ServiceName: "vouch",
		})
	}
	cli.SetLogger(logger)

	// Commands that start their own servers build their own container.
	if !startsServer(os.Args) {
		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		defer container.Close()

		cli.SetApp(cli.NewApp(container, cfg.UserID))
	}

	// Register commands
	cli.AddCommand(commitment.Cmd)
	cli.AddCommand(trust.Cmd)
	cli.AddCommand(deadline.Cmd)
	cli.AddCommand(serve.Cmd)
	cli.AddCommand(mcp.Cmd)

	// Execute CLI
	cli.ExecuteContext(ctx)
}

func startsServer(args []string) bool {
	for _, arg := range args[1:] {
		switch arg {
		case "serve", "mcp":
			return true
		case "commitment", "c", "trust", "resolve", "version":
			return false
		}
	}
	return false
}
