package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"claude-review-dashboard/internal/config"
	"claude-review-dashboard/internal/wire"
	"claude-review-dashboard/pkg/logger"
)

var (
	logLevel string
	driver   string

	rootCmd = &cobra.Command{
		Use:   "usage-import",
		Short: "Load Claude review usage records into the dashboard store",
		Long: `usage-import writes review usage records into the configured storage backend.

Examples:
  usage-import seed                          # Seed the built-in historical samples
  usage-import seed --file history.json      # Seed daily samples from a JSON file
  usage-import github                        # Import runs for configured repositories
  usage-import github --repo acme/api        # Import runs for a single repository
  usage-import --driver redis seed           # Override the storage driver
  usage-import status                        # Show driver, data presence and settings`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "",
		"Storage driver override (dynamodb, redis, postgres)")
}

// loadTools 加载配置并初始化导入依赖
func loadTools(ctx context.Context) (*wire.ImportTools, func(), error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if driver != "" {
		cfg.Storage.Driver = driver
	}
	level := cfg.Observability.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger.InitWithOptions(logger.Options{
		Level:   level,
		Format:  cfg.Observability.Logging.Format,
		Output:  "stderr",
		Service: "usage-import",
	})

	return wire.InitializeImportTools(ctx, cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
