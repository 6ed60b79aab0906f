package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/natalia-epifanova/course-marketplace/internal/app/scheduler"
	"github.com/natalia-epifanova/course-marketplace/internal/config"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/logger"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, os.Stdout)

	log.Info("starting scheduler", slog.String("env", cfg.Env), slog.String("spec", cfg.DeactivationSpec))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := scheduler.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("scheduler app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("scheduler app stopped gracefully")
}
