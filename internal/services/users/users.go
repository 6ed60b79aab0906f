// Package users управляет профилями пользователей и ролями.
package users

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/natalia-epifanova/course-marketplace/internal/cache"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/password"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
)

// Repository хранилище пользователей.
type Repository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id int64) error
	SetModerator(ctx context.Context, id int64, moderator bool) error
	DeactivateInactive(ctx context.Context, before time.Time) (int64, error)
	ListCourseIDsByParticipant(ctx context.Context, userID int64) ([]int64, error)
}

// CardInvalidator сбрасывает кэшированные карточки курсов.
type CardInvalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// PaymentHistory источник истории платежей для приватного профиля.
type PaymentHistory interface {
	ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, int, error)
}

// Service операции над профилями.
type Service struct {
	users    Repository
	payments PaymentHistory
	cards    CardInvalidator
	policy   *policy.Engine
	log      *slog.Logger
}

// NewService создает Service. cards может быть nil, если кэш карточек отключен.
func NewService(users Repository, payments PaymentHistory, cards CardInvalidator, engine *policy.Engine, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		payments: payments,
		cards:    cards,
		policy:   engine,
		log:      log,
	}
}

// Profile возвращает приватный профиль владельцу и публичный всем остальным.
func (s *Service) Profile(ctx context.Context, actor policy.Actor, id int64) (models.ProfileView, error) {
	const op = "services.users.Profile"

	if err := s.policy.Authorize(actor, policy.ActionRead, policy.ForProfile(id)); err != nil {
		return models.ProfileView{}, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return models.ProfileView{}, fmt.Errorf("%s: %w", op, err)
	}

	if actor.UserID != user.ID {
		public := models.NewPublicProfile(*user)
		return models.ProfileView{Public: &public}, nil
	}

	payments, _, err := s.payments.ListPayments(ctx, models.PaymentFilter{
		UserID: &user.ID,
		Page:   models.Page{Size: historyLimit},
	})
	if err != nil {
		return models.ProfileView{}, fmt.Errorf("%s: %w", op, err)
	}
	private := models.NewPrivateProfile(*user, payments)
	return models.ProfileView{Private: &private}, nil
}

const historyLimit = 100

// Update меняет контактные данные и пароль собственного профиля.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, patch models.UserPatch) (*models.PrivateProfile, error) {
	const op = "services.users.Update"

	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ForProfile(id)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if patch.Phone != nil {
		user.Phone = patch.Phone
	}
	if patch.City != nil {
		user.City = patch.City
	}
	if patch.Avatar != nil {
		user.Avatar = patch.Avatar
	}
	if patch.Password != nil {
		hashed, err := password.GetHash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = hashed
	}

	if err := s.users.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	profile := models.NewPrivateProfile(*user, nil)
	return &profile, nil
}

// Delete удаляет собственную учетную запись. Курсы и уроки остаются без владельца.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "services.users.Delete"

	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ForProfile(id)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// после удаления владелец в курсах и уроках обнуляется, поэтому список нужен заранее
	courseIDs := s.participantCourses(ctx, id)
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateCards(ctx, courseIDs)

	s.log.Info("user deleted", sl.Op(op), slog.Int64("user_id", id))
	return nil
}

func (s *Service) participantCourses(ctx context.Context, userID int64) []int64 {
	const op = "services.users.participantCourses"

	if s.cards == nil {
		return nil
	}
	ids, err := s.users.ListCourseIDsByParticipant(ctx, userID)
	if err != nil {
		s.log.Warn("failed to list user courses, cached cards stay until TTL", sl.Op(op), sl.Err(err))
		return nil
	}
	return ids
}

func (s *Service) invalidateCards(ctx context.Context, courseIDs []int64) {
	const op = "services.users.invalidateCards"

	if s.cards == nil || len(courseIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		keys = append(keys, cache.CourseKey(id))
	}
	if err := s.cards.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("cache invalidation failed", sl.Op(op), sl.Err(err))
	}
}

// List постраничный список пользователей для администратора.
func (s *Service) List(ctx context.Context, actor policy.Actor, page models.Page) (models.Paginated[models.PublicProfile], error) {
	const op = "services.users.List"

	if err := s.policy.Authorize(actor, policy.ActionList, policy.ForKind(policy.KindUsers)); err != nil {
		return models.Paginated[models.PublicProfile]{}, fmt.Errorf("%s: %w", op, err)
	}
	list, total, err := s.users.ListUsers(ctx, page.Limit(), page.Offset())
	if err != nil {
		return models.Paginated[models.PublicProfile]{}, fmt.Errorf("%s: %w", op, err)
	}
	profiles := make([]models.PublicProfile, 0, len(list))
	for _, u := range list {
		profiles = append(profiles, models.NewPublicProfile(u))
	}
	return models.NewPaginated(profiles, total, page), nil
}

// SetModerator включает или выключает роль модератора.
func (s *Service) SetModerator(ctx context.Context, actor policy.Actor, id int64, moderator bool) error {
	const op = "services.users.SetModerator"

	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ForKind(policy.KindUsers)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetModerator(ctx, id, moderator); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("moderator role changed", sl.Op(op),
		slog.Int64("user_id", id), slog.Bool("moderator", moderator), slog.Int64("by", actor.UserID))
	return nil
}

// DeactivateInactive выключает пользователей, не входивших дольше period.
func (s *Service) DeactivateInactive(ctx context.Context, now time.Time, period time.Duration) (int64, error) {
	const op = "services.users.DeactivateInactive"

	n, err := s.users.DeactivateInactive(ctx, now.Add(-period))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		s.log.Info("inactive users deactivated", sl.Op(op), slog.Int64("count", n))
	}
	return n, nil
}
