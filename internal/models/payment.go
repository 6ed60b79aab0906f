package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod способ оплаты.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodStripe   PaymentMethod = "stripe"
)

// PaymentStatus статус платежа. Переходы только pending -> paid и pending -> canceled.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusCanceled PaymentStatus = "canceled"
)

// Payment платеж пользователя за курс или за урок.
type Payment struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user"`
	PaymentDate  time.Time       `json:"payment_date"`
	PaidCourseID *int64          `json:"paid_course"`
	PaidLessonID *int64          `json:"paid_lesson"`
	Amount       decimal.Decimal `json:"payment_amount"`
	Method       PaymentMethod   `json:"payment_method"`
	Status       PaymentStatus   `json:"payment_status"`
	ProductID    *string         `json:"stripe_product_id,omitempty"`
	PriceID      *string         `json:"stripe_price_id,omitempty"`
	SessionID    *string         `json:"stripe_session_id,omitempty"`
	PaymentLink  *string         `json:"stripe_payment_link,omitempty"`
}

// PaymentInput данные для создания платежа.
type PaymentInput struct {
	PaidCourseID *int64          `json:"paid_course,omitempty" validate:"omitempty,gt=0"`
	PaidLessonID *int64          `json:"paid_lesson,omitempty" validate:"omitempty,gt=0"`
	Amount       decimal.Decimal `json:"payment_amount"`
	Method       PaymentMethod   `json:"payment_method" validate:"required,oneof=cash transfer stripe"`
}

// PaymentPatch изменение способа оплаты у ожидающего платежа.
type PaymentPatch struct {
	Method PaymentMethod `json:"payment_method" validate:"required,oneof=cash transfer stripe"`
}

// PaymentFilter параметры выборки платежей.
type PaymentFilter struct {
	UserID       *int64
	PaidCourseID *int64
	PaidLessonID *int64
	Method       *PaymentMethod
	Ascending    bool
	Page         Page
}
