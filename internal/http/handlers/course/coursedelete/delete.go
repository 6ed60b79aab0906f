// Package coursedelete обрабатывает удаление курса.
package coursedelete

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

// Service удаление курса.
type Service interface {
	DeleteCourse(ctx context.Context, actor policy.Actor, id int64) error
}

// Handler обработчик DELETE /courses/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить курс
// @Description Удаляет курс вместе с уроками и подписками.
// @Tags Courses
// @Param id path int true "ID курса"
// @Success 204
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /courses/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.delete"

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

	if err := h.service.DeleteCourse(r.Context(), middlewarectx.ActorFrom(r.Context()), id); err != nil {
		log.Error("failed to delete course", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("course deleted", slog.Int64("course_id", id))
	render.NoContent(w, r)
}
