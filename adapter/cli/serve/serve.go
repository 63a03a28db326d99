// Package serve runs the HTTP API from the CLI.
package serve

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vouch/adapter/api"
	"github.com/felixgeelhaar/vouch/internal/app"
	"github.com/felixgeelhaar/vouch/pkg/config"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

var (
	addr         string
	withOutbox   bool
	drainTimeout time.Duration
)

// Cmd starts the HTTP API.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.HTTPAddr = addr
		}

		logger := observability.NewLogger(observability.LogConfig{
			Level:          cfg.LogLevel,
			Format:         cfg.LogFormat,
			Output:         cmd.ErrOrStderr(),
			ServiceName:    "vouch-api",
			ServiceVersion: "1.0.0",
		})

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()

		if withOutbox {
			publisher, err := container.NewEventPublisher()
			if err != nil {
				return err
			}
			defer publisher.Close()
			processor := container.NewOutboxProcessor(publisher)
			processor.Start(ctx)
			defer processor.Stop()
		}

		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = cfg.HTTPAddr
		server := api.NewServer(serverCfg, api.HandlersFromContainer(container), container.Health, logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	Cmd.Flags().BoolVar(&withOutbox, "outbox", false, "also publish outbox events from this process")
	Cmd.Flags().DurationVar(&drainTimeout, "drain-timeout", 10*time.Second, "how long to wait for in-flight requests on shutdown")
}
