// Package paymentwebhook принимает уведомления платежного провайдера.
package paymentwebhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/natalia-epifanova/course-marketplace/internal/http/response"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
)

// SignatureHeader заголовок с подписью уведомления.
const SignatureHeader = "Stripe-Signature"

// maxPayloadBytes ограничение размера тела уведомления.
const maxPayloadBytes = 64 << 10

// Service обработка уведомления.
type Service interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// Handler обработчик POST /payments/webhook.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Вебхук платежного провайдера
// @Description Проверяет подпись и переводит ожидающий платеж в paid или canceled.
// @Tags Payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Подпись уведомления"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read request"))
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get(SignatureHeader)); err != nil {
		log.Warn("webhook rejected", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithMessage("received"))
}
