// Package auth содержит логику регистрации, входа и проверки токенов доступа.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/natalia-epifanova/course-marketplace/internal/lib/jwt"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/password"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

var (
	// ErrInvalidCredentials неверный email или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated токен недействителен или пользователь выключен.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Service отвечает за регистрацию, вход и проверку JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
	now      func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
		now:      time.Now,
	}
}

// Register создает активного пользователя без ролей с хэшированным паролем.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "services.auth.Register"

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashed,
		Phone:        req.Phone,
		City:         req.City,
		Avatar:       req.Avatar,
		IsActive:     true,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id
	user.CreatedAt = s.now()

	s.log.Info("user registered", sl.Op(op), slog.Int64("user_id", id))
	return &user, nil
}

// Login проверяет пароль и выдает токен доступа. Выключенные пользователи не входят.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if !user.IsActive {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		s.log.Warn("failed to update last login", sl.Op(op), sl.Err(err))
	}
	return token, nil
}

// Authenticate проверяет токен и строит субъекта по актуальной учетной записи,
// чтобы смена ролей и деактивация действовали сразу.
func (s *Service) Authenticate(ctx context.Context, token string) (policy.Actor, error) {
	const op = "services.auth.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return policy.Actor{}, fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return policy.Actor{}, fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, err)
	}

	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return policy.Actor{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if err != nil {
		return policy.Actor{}, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return policy.Actor{}, fmt.Errorf("%s: user is inactive: %w", op, ErrUnauthenticated)
	}
	return policy.ActorFromUser(*user), nil
}
