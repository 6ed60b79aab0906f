package middlewarectx

import (
	"context"

	"github.com/natalia-epifanova/course-marketplace/internal/policy"
)

// Authenticator проверяет токен доступа и возвращает субъекта запроса.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (policy.Actor, error)
}
