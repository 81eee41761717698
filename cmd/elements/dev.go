package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thecodecapo/elements/internal/config"
	"github.com/thecodecapo/elements/internal/devproxy"
	"github.com/thecodecapo/elements/internal/logging"
	"github.com/thecodecapo/elements/internal/metrics"
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Start the development proxy",
	Long: `Starts the development proxy. Requests under each configured prefix
(by default /api) are forwarded to their target (by default the backend on
http://localhost:3000); everything else is served from dev.static_dir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Dev.Port, _ = cmd.Flags().GetInt("port")
		}

		warnings, err := config.Validate(cfg)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			logging.Logger.Warn(w)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		m := metrics.New()
		proxy, err := devproxy.New(cfg.Dev, m)
		if err != nil {
			return err
		}
		for _, rule := range cfg.Dev.Proxy {
			logging.Logger.Info("proxy rule", "prefix", rule.Prefix, "target", rule.Target, "change_origin", rule.ChangeOrigin)
		}

		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				logging.Logger.Error("metrics listener failed", "err", err)
			}
		}()
		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			go func() {
				if err := proxy.WatchConfig(ctx, path); err != nil {
					logging.Logger.Warn("config watching disabled", "err", err)
				}
			}()
		}

		srv := &devproxy.Server{Addr: cfg.Dev.Addr(), Proxy: proxy}
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(devCmd)
	devCmd.Flags().IntP("port", "p", 5178, "port to listen on")
	devCmd.Flags().Bool("watch", true, "reload proxy rules when the config file changes")
}
