// Package middlewarectx содержит HTTP middleware аутентификации и ограничения частоты запросов.
//
// JWTMiddleware проверяет токен из заголовка Authorization через Authenticator
// и кладет субъекта запроса в контекст. При ошибке отвечает 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/natalia-epifanova/course-marketplace/internal/http/response"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// ActorKey ключ субъекта запроса в контексте.
const ActorKey Key = "actor"

// WithActor возвращает контекст с субъектом запроса.
func WithActor(ctx context.Context, actor policy.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFrom достает субъекта из контекста. Без аутентификации возвращает анонимного.
func ActorFrom(ctx context.Context) policy.Actor {
	actor, _ := ctx.Value(ActorKey).(policy.Actor)
	return actor
}

// JWTMiddleware возвращает middleware, который проверяет Bearer-токен.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			actor, err := auth.Authenticate(r.Context(), tokenStr)
			if err != nil {
				log.Warn("authentication failed", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
