// Package toggle обрабатывает переключение подписки на курс.
package toggle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/natalia-epifanova/course-marketplace/internal/http/middlewarectx"
	"github.com/natalia-epifanova/course-marketplace/internal/http/response"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
	"github.com/natalia-epifanova/course-marketplace/internal/services/subscription"
)

// Service переключение подписки.
type Service interface {
	Toggle(ctx context.Context, actor policy.Actor, courseID int64) (models.ToggleResult, error)
}

// Handler обработчик POST /subscriptions.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подписка на курс
// @Description Подписывает на курс или отписывает, если подписка уже есть.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body models.ToggleRequest true "ID курса"
// @Success 200 {object} response.Response "message: added или removed"
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /subscriptions [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.toggle"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ToggleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		// Нечитаемое тело трактуется как отсутствие course_id.
		log.Warn("failed to decode request body", sl.Err(err))
		req = models.ToggleRequest{}
	}

	result, err := h.service.Toggle(r.Context(), middlewarectx.ActorFrom(r.Context()), req.CourseID)
	if err != nil {
		if errors.Is(err, subscription.ErrCourseIDRequired) {
			log.Warn("course_id missing")
		} else {
			log.Error("failed to toggle subscription", sl.Err(err))
		}
		response.RenderError(w, r, err)
		return
	}

	log.Info("subscription toggled", slog.Int64("course_id", req.CourseID), slog.String("result", string(result)))
	render.JSON(w, r, response.StatusOKWithMessage(string(result)))
}
