// Package notifier собирает процесс рассылки уведомлений об обновлении курсов.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/natalia-epifanova/course-marketplace/internal/config"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/rabbitmq"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sendgrid"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/smtp"
	"github.com/natalia-epifanova/course-marketplace/internal/services/notification"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

// App потребитель очереди заданий на рассылку.
type App struct {
	db      *storage.Storage
	conn    *amqp.Connection
	ch      *amqp.Channel
	service *notification.Service
	queue   string
	workers int
	logger  *slog.Logger
}

// New подключается к базе и брокеру и выбирает почтовый транспорт.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.notifier.New"

	mailer, err := NewMailer(cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Topology{
		Exchange:   cfg.Exchange,
		Queue:      cfg.Queue,
		RoutingKey: cfg.RoutingKey,
		Prefetch:   cfg.Workers,
	})
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		db:      db,
		conn:    conn,
		ch:      ch,
		service: notification.NewService(db, mailer, logger),
		queue:   cfg.Queue,
		workers: cfg.Workers,
		logger:  logger,
	}, nil
}

// NewMailer выбирает транспорт по cfg.Transport.
func NewMailer(cfg config.Mail, logger *slog.Logger) (notification.Mailer, error) {
	switch cfg.Transport {
	case "", "smtp":
		return smtp.NewMailer(smtp.NewTransport(cfg, logger)), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid transport requires an api key")
		}
		return sendgrid.NewMailer(cfg.SendGridAPIKey, cfg.From, ""), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

// Run обрабатывает задания до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("notifier consuming", slog.String("queue", a.queue), slog.Int("workers", a.workers))

	err := rabbitmq.ConsumerMessage(ctx, a.ch, a.queue, a.workers, a.logger, a.service.HandleMessage)
	if err != nil {
		a.logger.Error("consumer stopped with error", sl.Err(err))
	}

	a.logger.Info("notifier shutting down gracefully")
	if cerr := a.ch.Close(); cerr != nil {
		a.logger.Error("failed to close channel", sl.Err(cerr))
	}
	if cerr := a.conn.Close(); cerr != nil {
		a.logger.Error("failed to close connection", sl.Err(cerr))
	}
	if cerr := a.db.Close(); cerr != nil {
		a.logger.Error("failed to close storage", sl.Err(cerr))
	}
	return err
}
