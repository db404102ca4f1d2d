package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"wc-unleashed-sync/internal/app"
	"wc-unleashed-sync/internal/config"
	"wc-unleashed-sync/internal/db"
	"wc-unleashed-sync/internal/httpserver"
	"wc-unleashed-sync/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck
	zl = zl.Named("api")

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBPool)
	if err != nil {
		zl.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	services, err := app.New(cfg, dbpool, zl)
	if err != nil {
		zl.Fatal("wire services", zap.Error(err))
	}

	srv, err := httpserver.New(cfg.HTTPAddr, zl, dbpool, services.HTTPDeps(cfg))
	if err != nil {
		zl.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		zl.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	} else {
		zl.Info("server stopped")
	}
}
