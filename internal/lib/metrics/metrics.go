// Package metrics регистрирует метрики Prometheus маркетплейса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests число обработанных HTTP-запросов.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration длительность обработки HTTP-запросов.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketplace_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// NotificationsSent успешно отправленные письма об обновлении курса.
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_notifications_sent_total",
		Help: "Course update emails delivered.",
	})

	// NotificationsFailed письма, которые не удалось отправить.
	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_notifications_failed_total",
		Help: "Course update emails that failed.",
	})

	// JobsEnqueued поставленные в очередь задания рассылки.
	JobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_notification_jobs_enqueued_total",
		Help: "Course update notification jobs submitted.",
	})

	// UsersDeactivated пользователи, выключенные планировщиком.
	UsersDeactivated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_users_deactivated_total",
		Help: "Users deactivated for inactivity.",
	})
)

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
