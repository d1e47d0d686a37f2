package main

import (
	"log"

	"go.uber.org/zap"

	"shortlink-service/internal/config"
	"shortlink-service/internal/repository"
	"shortlink-service/pkg/logging"
)

// 独立的建表/迁移入口，应用进程启动时不做任何 DDL
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.Init(logging.Options{Level: cfg.Log.Level})
	defer func() { _ = logger.Sync() }()

	db, err := repository.NewDB(cfg.DB, logger, logging.AtomicLevel)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}

	if err := repository.Migrate(db); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	logger.Info("Migration completed", zap.String("driver", cfg.DB.Driver))
}
