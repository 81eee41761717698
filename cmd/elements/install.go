package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thecodecapo/elements/internal/config"
	"github.com/thecodecapo/elements/internal/logging"
	"github.com/thecodecapo/elements/internal/service"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install a component as a systemd service",
	RunE: func(cmd *cobra.Command, args []string) error {
		component, _ := cmd.Flags().GetString("component")
		dir, _ := cmd.Flags().GetString("dir")
		flagPath, _ := cmd.Flags().GetString("config")

		logging.Logger.Info("installing systemd service", "component", component)
		u, err := service.CurrentUnit(component, config.ResolvePath(flagPath))
		if err != nil {
			return err
		}
		path, err := service.Install(u, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Service file written to %s. Enable it with:\n%s\n", path, service.FollowUp(u))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().String("component", "backend", "component to run: backend or dev")
	installCmd.Flags().String("dir", "/etc/systemd/system", "directory receiving the unit file")
}
