// Package models содержит доменные структуры маркетплейса курсов: пользователей,
// курсы, уроки, подписки и платежи, а также DTO для приема данных из JSON-запросов.
package models

import "time"

// User представляет зарегистрированного пользователя. Вход выполняется по email.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Phone        *string    `json:"phone,omitempty"`
	City         *string    `json:"city,omitempty"`
	Avatar       *string    `json:"avatar,omitempty"`
	IsModerator  bool       `json:"is_moderator"`
	IsAdmin      bool       `json:"is_admin"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RegisterRequest данные для регистрации.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=35"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=50"`
	Avatar   *string `json:"avatar,omitempty" validate:"omitempty,max=255"`
}

// LoginRequest данные для входа.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse ответ с токеном доступа.
type LoginResponse struct {
	Token string `json:"token"`
}

// UserPatch частичное обновление профиля. Пустые поля не меняются.
type UserPatch struct {
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=35"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=50"`
	Avatar   *string `json:"avatar,omitempty" validate:"omitempty,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// ModeratorRequest назначение или снятие роли модератора.
type ModeratorRequest struct {
	Moderator *bool `json:"moderator" validate:"required"`
}
