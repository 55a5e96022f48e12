package main

import (
	"github.com/spf13/cobra"
)

var (
	repositories []string

	githubCmd = &cobra.Command{
		Use:   "github",
		Short: "Import Claude review workflow runs from GitHub Actions",
		RunE:  runGitHub,
	}
)

func init() {
	githubCmd.Flags().StringSliceVarP(&repositories, "repo", "r", nil,
		"Repositories to import (owner/name), overrides github.repositories")
	rootCmd.AddCommand(githubCmd)
}

func runGitHub(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	tools, cleanup, err := loadTools(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := tools.Runner
	if len(repositories) > 0 {
		runner = runner.WithRepositories(repositories)
	}

	report, err := runner.Import(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}
