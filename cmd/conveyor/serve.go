package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Promptonauts/conveyor/pkg/logging"
	"github.com/Promptonauts/conveyor/pkg/observability"
	"github.com/Promptonauts/conveyor/pkg/runner"
	"github.com/Promptonauts/conveyor/pkg/server"
	"github.com/Promptonauts/conveyor/pkg/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server (configured via CONVEYOR_* env vars)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := server.LoadConfig()
		if err != nil {
			return err
		}
		if debug {
			cfg.Debug = true
		}

		logger, err := logging.New(cfg.Debug)
		if err != nil {
			return err
		}
		defer logger.Sync()

		st, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(); err != nil {
			return err
		}

		metrics := observability.NewMetricsRegistry()
		rn := runner.New(st, runner.NewExecutor(cfg.Workdir), logger, metrics)
		srv := server.New(cfg, st, rn, logger, metrics)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Start(ctx)
	},
}
