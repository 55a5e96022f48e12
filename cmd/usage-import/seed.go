package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"claude-review-dashboard/internal/application/importer"
)

var (
	samplesFile string

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Seed historical usage from daily samples",
		Long: `Expand per-repository daily samples into individual review records.

Seeding is refused when the usage store already holds records.
The sample file is a JSON array of {"repository","date","cost","reviews","model"}.`,
		RunE: runSeed,
	}
)

func init() {
	seedCmd.Flags().StringVarP(&samplesFile, "file", "f", "",
		"JSON file with daily samples (default: built-in history)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	samples := importer.DefaultHistory()
	if samplesFile != "" {
		raw, err := os.ReadFile(samplesFile)
		if err != nil {
			return fmt.Errorf("read samples: %w", err)
		}
		samples = nil
		if err := json.Unmarshal(raw, &samples); err != nil {
			return fmt.Errorf("parse samples %s: %w", samplesFile, err)
		}
	}

	ctx := cmd.Context()
	tools, cleanup, err := loadTools(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := tools.Seeder.Seed(ctx, samples)
	if errors.Is(err, importer.ErrAlreadySeeded) {
		fmt.Fprintln(cmd.ErrOrStderr(), "usage store already contains records, nothing to seed")
		return nil
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}
