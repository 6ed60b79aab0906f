package marketplace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"

	"github.com/natalia-epifanova/course-marketplace/internal/config"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/jwt"
	"github.com/natalia-epifanova/course-marketplace/internal/services/auth"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newRouter(t *testing.T, deps map[string]Pinger) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		HTTPServer: config.HTTPServer{RateLimit: 100, RateBurst: 100, AllowedOrigins: []string{"*"}},
		Catalog:    config.Catalog{AllowedVideoHosts: []string{"youtube"}, PageSize: 10},
	}
	services := Services{
		Auth: auth.NewService(nil, jwt.NewJWTMaker("secret", 0), logger),
	}

	r := chi.NewRouter()
	RegisterRoutes(r, logger, cfg, services, deps)
	return r
}

func TestRoutes(t *testing.T) {
	up := pingFunc(func(context.Context) error { return nil })
	router := newRouter(t, map[string]Pinger{"postgres": up})

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"курсы без токена", http.MethodGet, "/api/v1/courses", http.StatusUnauthorized},
		{"платежи без токена", http.MethodPost, "/api/v1/payments", http.StatusUnauthorized},
		{"подписка без токена", http.MethodPost, "/api/v1/subscriptions", http.StatusUnauthorized},
		{"профиль без токена", http.MethodGet, "/api/v1/users/1", http.StatusUnauthorized},
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"неизвестный маршрут", http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRoutes_HealthReportsFailedDependency(t *testing.T) {
	down := pingFunc(func(context.Context) error { return errors.New("refused") })
	router := newRouter(t, map[string]Pinger{"postgres": down})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"postgres":"down"`)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	router := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/courses", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
