package marketplace

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-документа.
	_ "github.com/natalia-epifanova/course-marketplace/docs"
	"github.com/natalia-epifanova/course-marketplace/internal/config"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/course/coursecreate"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/course/coursedelete"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/course/courselist"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/course/courseread"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/course/courseupdate"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/health"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/lesson/lessoncreate"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/lesson/lessondelete"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/lesson/lessonlist"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/lesson/lessonread"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/lesson/lessonupdate"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/payment/paymentcreate"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/payment/paymentdelete"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/payment/paymentlist"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/payment/paymentread"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/payment/paymentupdate"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/payment/paymentwebhook"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/subscription/toggle"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/user/login"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/user/moderator"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/user/profile"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/user/register"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/user/userdelete"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/user/userlist"
	"github.com/natalia-epifanova/course-marketplace/internal/http/handlers/user/userupdate"
	"github.com/natalia-epifanova/course-marketplace/internal/http/middlewarectx"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/metrics"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/validate"
	"github.com/natalia-epifanova/course-marketplace/internal/services/auth"
	"github.com/natalia-epifanova/course-marketplace/internal/services/catalog"
	"github.com/natalia-epifanova/course-marketplace/internal/services/payment"
	"github.com/natalia-epifanova/course-marketplace/internal/services/subscription"
	"github.com/natalia-epifanova/course-marketplace/internal/services/users"
)

// Pinger зависимость для проверки состояния.
type Pinger = health.Pinger

// Services сервисы, обслуживающие маршруты API.
type Services struct {
	Auth         *auth.Service
	Users        *users.Service
	Catalog      *catalog.Service
	Subscription *subscription.Service
	Payment      *payment.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s Services, deps map[string]Pinger) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
			MaxAge:         300,
		}),
		metrics.Middleware,
	)

	lessonValidator := validate.New(cfg.AllowedVideoHosts)
	pageSize := cfg.PageSize

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

		// Открытые конечные точки
		r.Post("/users/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/users/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/payments/webhook", paymentwebhook.New(logger, s.Payment).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))

			r.Get("/users", userlist.New(logger, s.Users, pageSize).ServeHTTP)
			r.Get("/users/{id}", profile.New(logger, s.Users).ServeHTTP)
			r.Patch("/users/{id}", userupdate.New(logger, s.Users).ServeHTTP)
			r.Delete("/users/{id}", userdelete.New(logger, s.Users).ServeHTTP)
			r.Put("/users/{id}/moderator", moderator.New(logger, s.Users).ServeHTTP)

			r.Post("/courses", coursecreate.New(logger, s.Catalog).ServeHTTP)
			r.Get("/courses", courselist.New(logger, s.Catalog, pageSize).ServeHTTP)
			r.Get("/courses/{id}", courseread.New(logger, s.Catalog).ServeHTTP)
			r.Patch("/courses/{id}", courseupdate.New(logger, s.Catalog).ServeHTTP)
			r.Delete("/courses/{id}", coursedelete.New(logger, s.Catalog).ServeHTTP)

			r.Post("/lessons", lessoncreate.New(logger, s.Catalog, lessonValidator).ServeHTTP)
			r.Get("/lessons", lessonlist.New(logger, s.Catalog, pageSize).ServeHTTP)
			r.Get("/lessons/{id}", lessonread.New(logger, s.Catalog).ServeHTTP)
			r.Patch("/lessons/{id}", lessonupdate.New(logger, s.Catalog, lessonValidator).ServeHTTP)
			r.Delete("/lessons/{id}", lessondelete.New(logger, s.Catalog).ServeHTTP)

			r.Post("/subscriptions", toggle.New(logger, s.Subscription).ServeHTTP)

			r.Post("/payments", paymentcreate.New(logger, s.Payment).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, s.Payment, pageSize).ServeHTTP)
			r.Get("/payments/{id}", paymentread.New(logger, s.Payment).ServeHTTP)
			r.Patch("/payments/{id}", paymentupdate.New(logger, s.Payment).ServeHTTP)
			r.Delete("/payments/{id}", paymentdelete.New(logger, s.Payment).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, deps).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
