// Package main Course Marketplace API
//
// @title           Course Marketplace API
// @version         1.0
// @description     API маркетплейса онлайн-курсов: курсы, уроки, подписки, платежи и профили.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/natalia-epifanova/course-marketplace/internal/app/marketplace"
	"github.com/natalia-epifanova/course-marketplace/internal/config"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/logger"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, os.Stdout)

	log.Info("starting marketplace", slog.String("env", cfg.Env))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := marketplace.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("marketplace stopped gracefully")
}
