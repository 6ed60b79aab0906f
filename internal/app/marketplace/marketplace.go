// Package marketplace собирает HTTP API маркетплейса курсов.
package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/natalia-epifanova/course-marketplace/internal/cache"
	"github.com/natalia-epifanova/course-marketplace/internal/config"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/jwt"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/rabbitmq"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/migrations"
	"github.com/natalia-epifanova/course-marketplace/internal/paymentprovider"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
	"github.com/natalia-epifanova/course-marketplace/internal/services/auth"
	"github.com/natalia-epifanova/course-marketplace/internal/services/catalog"
	"github.com/natalia-epifanova/course-marketplace/internal/services/payment"
	"github.com/natalia-epifanova/course-marketplace/internal/services/subscription"
	"github.com/natalia-epifanova/course-marketplace/internal/services/users"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-сервер API и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключается к хранилищам и брокеру, применяет миграции и собирает маршруты.
// Недоступный Redis не мешает запуску: карточки курсов просто не кэшируются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	var cards catalog.CardCache
	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("redis unavailable, course cache disabled", sl.Err(err))
	} else {
		cards = cacheRedis
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, topology(cfg.RabbitMQ))
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}

	if cfg.WebhookSecret == "" {
		logger.Warn("stripe webhook secret is not set, payment webhooks will be rejected")
	}

	engine := policy.NewEngine()
	jobs := rabbitmq.NewJobQueue(ch, cfg.Exchange, cfg.RoutingKey)
	catalogService := catalog.NewService(db, cards, jobs, engine, logger, catalog.Options{
		StalenessThreshold: cfg.StalenessThreshold,
		AllowedVideoHosts:  cfg.AllowedVideoHosts,
		CacheTTL:           cfg.CacheTTL,
	})
	services := Services{
		Auth:         auth.NewService(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), logger),
		Users:        users.NewService(db, db, cards, engine, logger),
		Catalog:      catalogService,
		Subscription: subscription.NewService(db, engine, logger),
		Payment:      payment.NewService(db, paymentprovider.NewClient(cfg.Stripe), engine, logger, cfg.WebhookSecret),
	}

	deps := map[string]Pinger{"postgres": db}
	if cacheRedis != nil {
		deps["redis"] = cacheRedis
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, services, deps)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}

func topology(cfg config.RabbitMQ) rabbitmq.Topology {
	return rabbitmq.Topology{
		Exchange:   cfg.Exchange,
		Queue:      cfg.Queue,
		RoutingKey: cfg.RoutingKey,
	}
}
