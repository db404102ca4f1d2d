package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"wc-unleashed-sync/internal/config"
	"wc-unleashed-sync/internal/db"
	"wc-unleashed-sync/internal/logger"
	"wc-unleashed-sync/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck
	zl = zl.Named("seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBPool)
	if err != nil {
		zl.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, zl); err != nil {
		zl.Fatal("seed apply", zap.Error(err))
	}
}
