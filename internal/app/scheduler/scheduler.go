// Package scheduler собирает процесс периодических задач маркетплейса.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/natalia-epifanova/course-marketplace/internal/config"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
	schedulerservice "github.com/natalia-epifanova/course-marketplace/internal/services/scheduler"
	"github.com/natalia-epifanova/course-marketplace/internal/services/users"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

const (
	dbReadyAttempts = 10
	dbReadyDelay    = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.Service
	db               *storage.Storage
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *storage.Storage) error {
	var err error
	for range dbReadyAttempts {
		if err = db.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dbReadyDelay):
		}
	}
	return fmt.Errorf("database not ready after retries: %w", err)
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(ctx, db); err != nil {
		closeResources(db, logger)
		return nil, err
	}

	userService := users.NewService(db, db, nil, policy.NewEngine(), logger)
	schedulerService := schedulerservice.NewService(userService, logger, cfg.DeactivationSpec, cfg.InactivityPeriod)

	return &App{
		schedulerService: schedulerService,
		db:               db,
		logger:           logger,
	}, nil
}

func closeResources(db *storage.Storage, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close storage", sl.Err(err))
	}
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := a.schedulerService.Start(ctx)

	a.logger.Info("shutting down scheduler service")
	closeResources(a.db, a.logger)
	return err
}
