// Package subscription переключает подписку пользователя на курс.
package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
)

// ErrCourseIDRequired в запросе не указан курс.
var ErrCourseIDRequired = models.NewValidationError("course_id is required")

// Repository хранилище подписок.
type Repository interface {
	AddSubscription(ctx context.Context, userID, courseID int64) (bool, error)
	RemoveSubscription(ctx context.Context, userID, courseID int64) (bool, error)
}

// Service переключатель подписок.
type Service struct {
	repo   Repository
	policy *policy.Engine
	log    *slog.Logger
}

// NewService создает Service.
func NewService(repo Repository, engine *policy.Engine, log *slog.Logger) *Service {
	return &Service{repo: repo, policy: engine, log: log}
}

// Toggle создает подписку, если ее не было, иначе удаляет.
// Гонку двух одновременных вызовов разрешает уникальность пары (user, course):
// проигравшая вставка считается найденной строкой и удаляет ее.
func (s *Service) Toggle(ctx context.Context, actor policy.Actor, courseID int64) (models.ToggleResult, error) {
	const op = "services.subscription.Toggle"

	if err := s.policy.Authorize(actor, policy.ActionCreate, policy.ForKind(policy.KindSubscription)); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if courseID <= 0 {
		return "", fmt.Errorf("%s: %w", op, ErrCourseIDRequired)
	}

	added, err := s.repo.AddSubscription(ctx, actor.UserID, courseID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if added {
		s.log.Debug("subscription added", sl.Op(op), slog.Int64("user_id", actor.UserID), slog.Int64("course_id", courseID))
		return models.SubscriptionAdded, nil
	}

	if _, err := s.repo.RemoveSubscription(ctx, actor.UserID, courseID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("subscription removed", sl.Op(op), slog.Int64("user_id", actor.UserID), slog.Int64("course_id", courseID))
	return models.SubscriptionRemoved, nil
}
