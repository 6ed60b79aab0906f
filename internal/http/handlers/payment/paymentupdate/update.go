// Package paymentupdate обрабатывает смену способа оплаты.
package paymentupdate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/natalia-epifanova/course-marketplace/internal/http/middlewarectx"
	"github.com/natalia-epifanova/course-marketplace/internal/http/params"
	"github.com/natalia-epifanova/course-marketplace/internal/http/response"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
)

// Service смена способа оплаты.
type Service interface {
	UpdateMethod(ctx context.Context, actor policy.Actor, id int64, method models.PaymentMethod) (*models.Payment, error)
}

// Handler обработчик PATCH /payments/{id}.
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
// @Summary Сменить способ оплаты
// @Description Доступно только для ожидающего платежа.
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path int true "ID платежа"
// @Param request body models.PaymentPatch true "Новый способ оплаты"
// @Success 200 {object} response.Response{data=models.Payment}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Платеж уже проведен"
// @Router /payments/{id} [patch]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := params.ID(r)
	if err != nil {
		log.Warn("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req models.PaymentPatch
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

	payment, err := h.service.UpdateMethod(r.Context(), middlewarectx.ActorFrom(r.Context()), id, req.Method)
	if err != nil {
		log.Error("failed to update payment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("payment method changed", slog.Int64("payment_id", id), slog.String("method", string(req.Method)))
	render.JSON(w, r, response.StatusOKWithData(payment))
}
