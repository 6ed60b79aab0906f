package models

import "time"

// PublicProfile то, что видит о пользователе кто угодно, кроме него самого.
type PublicProfile struct {
	ID     int64   `json:"id"`
	Email  string  `json:"email"`
	City   *string `json:"city,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// PrivateProfile полный профиль, доступный только владельцу.
type PrivateProfile struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone,omitempty"`
	City           *string    `json:"city,omitempty"`
	Avatar         *string    `json:"avatar,omitempty"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	PaymentHistory []Payment  `json:"payment_history"`
}

// ProfileView результат чтения профиля: заполнен ровно один из вариантов.
type ProfileView struct {
	Public  *PublicProfile
	Private *PrivateProfile
}

// IsPrivate сообщает, что представление содержит приватный профиль.
func (v ProfileView) IsPrivate() bool {
	return v.Private != nil
}

// Body возвращает вариант для сериализации в ответ.
func (v ProfileView) Body() any {
	if v.Private != nil {
		return v.Private
	}
	return v.Public
}

// NewPublicProfile строит публичное представление пользователя.
func NewPublicProfile(u User) PublicProfile {
	return PublicProfile{
		ID:     u.ID,
		Email:  u.Email,
		City:   u.City,
		Avatar: u.Avatar,
	}
}

// NewPrivateProfile строит приватное представление с историей платежей.
func NewPrivateProfile(u User, payments []Payment) PrivateProfile {
	if payments == nil {
		payments = []Payment{}
	}
	return PrivateProfile{
		ID:             u.ID,
		Email:          u.Email,
		Phone:          u.Phone,
		City:           u.City,
		Avatar:         u.Avatar,
		LastLogin:      u.LastLogin,
		PaymentHistory: payments,
	}
}
