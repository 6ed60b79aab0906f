// Package payment ведет журнал платежей и создает сессии оплаты у провайдера.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/paymentprovider"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

// Repository журнал платежей и справочник оплачиваемых объектов.
type Repository interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	GetLesson(ctx context.Context, id int64) (*models.Lesson, error)

	CreatePayment(ctx context.Context, p models.Payment) (*models.Payment, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, int, error)
	UpdatePaymentMethod(ctx context.Context, id int64, method models.PaymentMethod) error
	SetPaymentStatusBySession(ctx context.Context, sessionID string, status models.PaymentStatus) (bool, error)
	DeletePayment(ctx context.Context, id int64) error
}

// Provider контракт платежного провайдера.
type Provider interface {
	CreateProduct(ctx context.Context, name string) (string, error)
	CreatePrice(ctx context.Context, amount decimal.Decimal, productID string) (string, error)
	CreateCheckoutSession(ctx context.Context, priceID string) (*paymentprovider.CheckoutSession, error)
}

// Service операции над платежами.
type Service struct {
	repo          Repository
	provider      Provider
	policy        *policy.Engine
	log           *slog.Logger
	webhookSecret string
	now           func() time.Time
}

// NewService создает Service.
func NewService(repo Repository, provider Provider, engine *policy.Engine, log *slog.Logger, webhookSecret string) *Service {
	return &Service{
		repo:          repo,
		provider:      provider,
		policy:        engine,
		log:           log,
		webhookSecret: webhookSecret,
		now:           time.Now,
	}
}

// Create регистрирует покупку курса или урока. Запись появляется только после
// успешного создания товара, цены и сессии у провайдера.
func (s *Service) Create(ctx context.Context, actor policy.Actor, in models.PaymentInput) (*models.Payment, error) {
	const op = "services.payment.Create"

	if err := s.policy.Authorize(actor, policy.ActionCreate, policy.ForKind(policy.KindPayment)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := validateInput(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	name, err := s.productName(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// провайдер списывает сумму в центах без дробного остатка, журнал хранит ту же сумму
	amount := in.Amount.Truncate(2)

	productID, err := s.provider.CreateProduct(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, providerFailure(err))
	}
	priceID, err := s.provider.CreatePrice(ctx, amount, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, providerFailure(err))
	}
	session, err := s.provider.CreateCheckoutSession(ctx, priceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, providerFailure(err))
	}

	created, err := s.repo.CreatePayment(ctx, models.Payment{
		UserID:       actor.UserID,
		PaymentDate:  s.now(),
		PaidCourseID: in.PaidCourseID,
		PaidLessonID: in.PaidLessonID,
		Amount:       amount,
		Method:       in.Method,
		Status:       models.PaymentStatusPending,
		ProductID:    &productID,
		PriceID:      &priceID,
		SessionID:    &session.ID,
		PaymentLink:  &session.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment created", sl.Op(op),
		slog.Int64("payment_id", created.ID), slog.Int64("user_id", actor.UserID), slog.String("session_id", session.ID))
	return created, nil
}

// Get возвращает платеж владельцу или модератору.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (*models.Payment, error) {
	const op = "services.payment.Get"

	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.policy.Authorize(actor, policy.ActionRead, policy.ForPayment(*p)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// List возвращает платежи по фильтру. Модератор видит все, остальные только свои.
func (s *Service) List(ctx context.Context, actor policy.Actor, f models.PaymentFilter) (models.Paginated[models.Payment], error) {
	const op = "services.payment.List"

	if err := s.policy.Authorize(actor, policy.ActionList, policy.ForKind(policy.KindPayment)); err != nil {
		return models.Paginated[models.Payment]{}, fmt.Errorf("%s: %w", op, err)
	}
	if !policy.IsModerator(actor) {
		id := actor.UserID
		f.UserID = &id
	}
	list, total, err := s.repo.ListPayments(ctx, f)
	if err != nil {
		return models.Paginated[models.Payment]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPaginated(list, total, f.Page), nil
}

// UpdateMethod меняет способ оплаты, пока платеж не оплачен.
func (s *Service) UpdateMethod(ctx context.Context, actor policy.Actor, id int64, method models.PaymentMethod) (*models.Payment, error) {
	const op = "services.payment.UpdateMethod"

	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ForPayment(*p)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.Status != models.PaymentStatusPending {
		return nil, fmt.Errorf("%s: payment is %s: %w", op, p.Status, models.ErrConflict)
	}
	if err := s.repo.UpdatePaymentMethod(ctx, id, method); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.Method = method
	return p, nil
}

// Delete удаляет неоплаченный платеж.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "services.payment.Delete"

	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ForPayment(*p)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if p.Status == models.PaymentStatusPaid {
		return fmt.Errorf("%s: paid payment cannot be deleted: %w", op, models.ErrConflict)
	}
	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HandleWebhook проверяет подпись уведомления провайдера и применяет событие.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	const op = "services.payment.HandleWebhook"

	event, err := paymentprovider.ParseEvent(payload, signature, s.webhookSecret, s.now())
	if err != nil {
		return fmt.Errorf("%s: %w", op, &models.ValidationError{Msg: "invalid webhook payload", Err: err})
	}
	if err := s.HandleCheckoutEvent(ctx, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HandleCheckoutEvent переводит ожидающий платеж в paid или canceled.
// Повторные и неизвестные события игнорируются.
func (s *Service) HandleCheckoutEvent(ctx context.Context, event paymentprovider.Event) error {
	const op = "services.payment.HandleCheckoutEvent"

	var status models.PaymentStatus
	switch event.Type {
	case paymentprovider.EventCheckoutCompleted:
		status = models.PaymentStatusPaid
	case paymentprovider.EventCheckoutExpired:
		status = models.PaymentStatusCanceled
	default:
		s.log.Debug("event ignored", sl.Op(op), slog.String("type", event.Type))
		return nil
	}

	session, err := event.Session()
	if err != nil {
		return fmt.Errorf("%s: %w", op, &models.ValidationError{Msg: "malformed event object", Err: err})
	}
	if session.ID == "" {
		return fmt.Errorf("%s: %w", op, models.NewValidationError("event has no session id"))
	}

	changed, err := s.repo.SetPaymentStatusBySession(ctx, session.ID, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !changed {
		s.log.Warn("no pending payment for session", sl.Op(op), slog.String("session_id", session.ID))
		return nil
	}
	s.log.Info("payment status changed", sl.Op(op),
		slog.String("session_id", session.ID), slog.String("status", string(status)))
	return nil
}

func validateInput(in models.PaymentInput) error {
	switch {
	case in.PaidCourseID == nil && in.PaidLessonID == nil:
		return models.NewValidationError("paid_course or paid_lesson is required")
	case in.PaidCourseID != nil && in.PaidLessonID != nil:
		return models.NewValidationError("only one of paid_course and paid_lesson may be set")
	case !in.Amount.Truncate(2).IsPositive():
		return models.NewValidationError("payment_amount must be at least 0.01")
	}
	return nil
}

func (s *Service) productName(ctx context.Context, in models.PaymentInput) (string, error) {
	if in.PaidCourseID != nil {
		c, err := s.repo.GetCourse(ctx, *in.PaidCourseID)
		if err != nil {
			return "", unknownTarget("paid_course", err)
		}
		return c.Name, nil
	}
	l, err := s.repo.GetLesson(ctx, *in.PaidLessonID)
	if err != nil {
		return "", unknownTarget("paid_lesson", err)
	}
	return l.Name, nil
}

func unknownTarget(field string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &models.ValidationError{Msg: field + " does not exist", Err: err}
	}
	return err
}

func providerFailure(err error) error {
	return &models.ValidationError{Msg: "payment provider rejected the request", Err: err}
}
