package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thecodecapo/elements/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Print the element color theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return theme.Default(cfg.Theme.Content...).Render(cmd.OutOrStdout(), format)
	},
}

var themeScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report which theme colors the content files use",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		root, _ := cmd.Flags().GetString("root")

		usages, err := theme.Default(cfg.Theme.Content...).Scan(root)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "COLOR\tUSES\tFILES")
		for _, u := range usages {
			files := strings.Join(u.Files, ",")
			if files == "" {
				files = "-"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", u.Color, u.Count, files)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.Flags().StringP("format", "f", theme.FormatJSON, "output format: json, yaml or css")
	themeCmd.AddCommand(themeScanCmd)
	themeScanCmd.Flags().String("root", ".", "directory the content globs are relative to")
}
