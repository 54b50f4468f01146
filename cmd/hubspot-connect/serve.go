package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/brizzai/hubspot-connect/internal/auth"
	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/brizzai/hubspot-connect/internal/integrations/hubspot"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/requester"
	"github.com/brizzai/hubspot-connect/internal/server"
	"github.com/brizzai/hubspot-connect/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the OAuth endpoints and the MCP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app := fx.New(
		fx.Supply(cfg, &cfg.HubSpot, &cfg.Store),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.GetLogger()}
		}),
		store.Module,
		requester.Module,
		auth.Module,
		hubspot.Module,
		server.Module,
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}
