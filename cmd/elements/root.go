package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thecodecapo/elements/internal/config"
	"github.com/thecodecapo/elements/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "elements",
	Short: "elements runs the backend, the dev proxy and the element color theme",
	Long: `elements bundles the pieces of the project scaffold:
a backend answering GET / on :3000, a development proxy on :5178 forwarding
/api to that backend, and the chemical element color theme.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default $ELEMENTS_CONFIG or elements.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}

// loadConfig resolves and loads the config file, then applies the log level
// from the flag or, failing that, from the file.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	flagPath, _ := cmd.Flags().GetString("config")
	path := config.ResolvePath(flagPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = cfg.LogLevel
	}
	if err := logging.SetLevel(level); err != nil {
		return nil, "", err
	}
	logging.Logger.Debug("configuration loaded", "path", path)
	return cfg, path, nil
}
