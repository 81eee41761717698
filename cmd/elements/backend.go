package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thecodecapo/elements/internal/backend"
	"github.com/thecodecapo/elements/internal/logging"
	"github.com/thecodecapo/elements/internal/metrics"
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Start the backend listener",
	Long:  `Starts the backend, answering GET / with a fixed greeting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Backend.Port, _ = cmd.Flags().GetInt("port")
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		m := metrics.New()
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				logging.Logger.Error("metrics listener failed", "err", err)
			}
		}()

		srv := &backend.Server{Config: cfg.Backend, Metrics: m}
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(backendCmd)
	backendCmd.Flags().IntP("port", "p", 3000, "port to listen on")
}
