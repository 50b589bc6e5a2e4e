package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/surajvast1/Doc-Manager/internal/app"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

var (
	clients    *app.Clients
	outputJSON bool
	stopSignal context.CancelFunc
	cmdContext = context.Background()
)

// bootstrap is swapped in tests for clients built from stubs.
var bootstrap = func(ctx context.Context) (*app.Clients, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger_i.Init(cfg.IsProd, cfg.LogLevel)
	return app.Bootstrap(ctx, cfg)
}

var rootCmd = &cobra.Command{
	Use:           "docctl",
	Short:         "Operate the document index without going through the HTTP API",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmdContext, stopSignal = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		var err error
		clients, err = bootstrap(cmdContext)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if clients != nil {
			clients.Close()
		}
		if stopSignal != nil {
			stopSignal()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print results as JSON")
}
