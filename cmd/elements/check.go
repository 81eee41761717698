package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thecodecapo/elements/internal/config"
	"github.com/thecodecapo/elements/internal/theme"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration",
	Long: `Validates proxy rules and the theme, and warns when a local proxy
target does not point at the backend port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		warnings, cfgErr := config.Validate(cfg)
		for _, w := range warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if err := errors.Join(cfgErr, theme.Default(cfg.Theme.Content...).Validate()); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(out, "%s: ok (backend %s, dev proxy %s, %d proxy rules)\n",
			path, cfg.Backend.Addr(), cfg.Dev.Addr(), len(cfg.Dev.Proxy))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
