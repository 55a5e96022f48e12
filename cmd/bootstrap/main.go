package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"claude-review-dashboard/internal/application/settings"
	"claude-review-dashboard/internal/config"
	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
	"claude-review-dashboard/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting storage bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化存储
	storage, cleanup, err := wire.InitializeStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}
	defer cleanup()

	if err := storage.Health.Ping(ctx); err != nil {
		log.Fatalf("storage %s not reachable: %v", storage.Driver, err)
	}
	fmt.Printf("Storage driver: %s\n", storage.Driver)

	// 3. 写入默认设置
	_, err = storage.Settings.Get(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		fmt.Println("Persisting default organization settings...")
		resolved, err := settings.NewResolver(storage.Settings).Update(ctx, &entity.PartialSettings{})
		if err != nil {
			log.Fatalf("failed to persist default settings: %v", err)
		}
		fmt.Printf("Default settings stored (monthly budget %.2f).\n", resolved.MonthlyBudget)
	case err != nil:
		log.Fatalf("failed to read settings: %v", err)
	default:
		fmt.Println("Organization settings already exist.")
	}

	// 4. 检查用量数据
	has, err := storage.Usage.HasAny(ctx)
	if err != nil {
		log.Fatalf("failed to inspect usage records: %v", err)
	}
	if !has {
		fmt.Println("Usage store is empty. Run `usage-import seed` to load historical data.")
	}

	fmt.Println("Bootstrap completed successfully.")
}
