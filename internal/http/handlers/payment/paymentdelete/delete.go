// Package paymentdelete обрабатывает удаление непроведенного платежа.
package paymentdelete

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
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
)

type Service interface {
	Delete(ctx context.Context, actor policy.Actor, id int64) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить платеж
// @Tags Payments
// @Param id path int true "ID платежа"
// @Success 204
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Платеж уже проведен"
// @Router /payments/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.delete"

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

	if err := h.service.Delete(r.Context(), middlewarectx.ActorFrom(r.Context()), id); err != nil {
		log.Error("failed to delete payment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("payment deleted", slog.Int64("payment_id", id))
	render.NoContent(w, r)
}
