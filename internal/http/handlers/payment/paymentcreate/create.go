// Package paymentcreate обрабатывает создание платежа и сессии оплаты.
package paymentcreate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/natalia-epifanova/course-marketplace/internal/http/middlewarectx"
	"github.com/natalia-epifanova/course-marketplace/internal/http/response"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
)

// Service создание платежа.
type Service interface {
	Create(ctx context.Context, actor policy.Actor, in models.PaymentInput) (*models.Payment, error)
}

// Handler обработчик POST /payments.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать платеж
// @Description Создает продукт, цену и сессию оплаты у провайдера, сохраняет ожидающий платеж со ссылкой на оплату.
// @Description Нужно указать ровно одно из paid_course и paid_lesson.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.PaymentInput true "Данные платежа"
// @Success 201 {object} response.Response{data=models.Payment}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /payments [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PaymentInput
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	payment, err := h.service.Create(r.Context(), middlewarectx.ActorFrom(r.Context()), req)
	if err != nil {
		log.Error("failed to create payment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("payment created", slog.Int64("payment_id", payment.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(payment))
}
