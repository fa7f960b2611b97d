package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thrive-backend/internal/config"
	"thrive-backend/internal/database"
	"thrive-backend/internal/logger"
	"thrive-backend/internal/server"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLogger, err := logger.New(cfg.AppEnv, cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, appLogger *zap.Logger) error {
	if cfg.UsesDefaultDSN() {
		appLogger.Warn("DATABASE_DSN not set, using the local default")
	}

	db, err := database.Open(cfg.Database, appLogger)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	tz, err := cfg.Location()
	if err != nil {
		return err
	}

	app, err := server.New(cfg, appLogger, db, tz)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("http server listening", zap.String("port", cfg.HTTPPort), zap.String("timezone", tz.String()))
		return app.Listen(":" + cfg.HTTPPort)
	})
	g.Go(func() error {
		<-ctx.Done()
		appLogger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	err = g.Wait()
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	appLogger.Info("server stopped")
	return nil
}
