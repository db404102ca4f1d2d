package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"wc-unleashed-sync/internal/config"
	"wc-unleashed-sync/internal/db"
	"wc-unleashed-sync/internal/logger"
	"wc-unleashed-sync/internal/migrate"
)

func main() {
	var down bool
	flag.BoolVar(&down, "down", false, "Roll back the most recent migration instead of applying pending ones")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck
	zl = zl.Named("migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBPool)
	if err != nil {
		zl.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if down {
		if err := migrate.Rollback(ctx, pool); err != nil {
			zl.Fatal("roll back migration", zap.Error(err))
		}
		zl.Info("migration rolled back")
		return
	}
	if err := migrate.Apply(ctx, pool, zl); err != nil {
		zl.Fatal("apply migrations", zap.Error(err))
	}
	zl.Info("migrations applied")
}
