package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/natalia-epifanova/course-marketplace/internal/models"
)

const userColumns = `id, email, password_hash, phone, city, avatar, is_moderator, is_admin,
	is_active, last_login, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Phone, &u.City, &u.Avatar,
		&u.IsModerator, &u.IsAdmin, &u.IsActive, &u.LastLogin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	query := `INSERT INTO users (email, password_hash, phone, city, avatar, is_moderator, is_admin, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Phone, user.City, user.Avatar,
		user.IsModerator, user.IsAdmin, user.IsActive).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, translate(err))
	}
	return id, nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return u, nil
}

// ListUsers возвращает страницу пользователей и их общее число.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}

// UpdateUser сохраняет изменяемые поля профиля.
func (s *Storage) UpdateUser(ctx context.Context, user models.User) error {
	const op = "storage.UpdateUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET phone = $1, city = $2, avatar = $3, password_hash = $4 WHERE id = $5`,
		user.Phone, user.City, user.Avatar, user.PasswordHash, user.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	return affected(res, op)
}

// DeleteUser удаляет пользователя. Курсы и уроки остаются без владельца,
// подписки и платежи удаляются каскадно.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}

// SetModerator включает или выключает роль модератора.
func (s *Storage) SetModerator(ctx context.Context, id int64, moderator bool) error {
	const op = "storage.SetModerator"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET is_moderator = $1 WHERE id = $2`, moderator, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}

// TouchLastLogin фиксирует время входа.
func (s *Storage) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	const op = "storage.TouchLastLogin"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}

// DeactivateInactive выключает обычных пользователей, не входивших с момента before.
// Возвращает число деактивированных записей.
func (s *Storage) DeactivateInactive(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.DeactivateInactive"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE users SET is_active = FALSE
		WHERE is_active AND NOT is_admin AND last_login < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
