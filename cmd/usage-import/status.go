package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage driver, data presence and effective settings",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	tools, cleanup, err := loadTools(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := tools.Storage.Health.Ping(ctx); err != nil {
		return err
	}
	has, err := tools.Storage.Usage.HasAny(ctx)
	if err != nil {
		return err
	}
	resolved, err := tools.Settings.Get(ctx)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"driver":    tools.Storage.Driver,
		"has_usage": has,
		"settings":  resolved,
	})
}
