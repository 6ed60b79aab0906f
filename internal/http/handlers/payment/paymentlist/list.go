// Package paymentlist обрабатывает список платежей с фильтрами.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/natalia-epifanova/course-marketplace/internal/http/middlewarectx"
	"github.com/natalia-epifanova/course-marketplace/internal/http/params"
	"github.com/natalia-epifanova/course-marketplace/internal/http/response"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
)

// Service список платежей.
type Service interface {
	List(ctx context.Context, actor policy.Actor, f models.PaymentFilter) (models.Paginated[models.Payment], error)
}

// Handler обработчик GET /payments.
type Handler struct {
	log      *slog.Logger
	service  Service
	pageSize int
}

// New создает Handler.
func New(log *slog.Logger, service Service, pageSize int) *Handler {
	return &Handler{log: log, service: service, pageSize: pageSize}
}

// ServeHTTP godoc
// @Summary Список платежей
// @Description Модератор видит все платежи, остальные только свои.
// @Tags Payments
// @Produce json
// @Param paid_course query int false "Фильтр по курсу"
// @Param paid_lesson query int false "Фильтр по уроку"
// @Param payment_method query string false "cash, transfer или stripe"
// @Param ordering query string false "payment_date или -payment_date"
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /payments [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter, err := params.PaymentFilter(r, h.pageSize)
	if err != nil {
		log.Warn("invalid payment filter", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	page, err := h.service.List(r.Context(), middlewarectx.ActorFrom(r.Context()), filter)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}
