package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/natalia-epifanova/course-marketplace/internal/app/notifier"
	"github.com/natalia-epifanova/course-marketplace/internal/config"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/logger"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, os.Stdout)

	log.Info("starting notifier", slog.String("env", cfg.Env), slog.String("transport", cfg.Transport))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := notifier.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize notifier app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("notifier app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("notifier app stopped gracefully")
}
