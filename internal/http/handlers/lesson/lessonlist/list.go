// Package lessonlist обрабатывает список уроков.
package lessonlist

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

// Service список уроков.
type Service interface {
	ListLessons(ctx context.Context, actor policy.Actor, page models.Page) (models.Paginated[models.Lesson], error)
}

// Handler обработчик GET /lessons.
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
// @Summary Список уроков
// @Description Модератор видит все уроки, остальные только свои.
// @Tags Lessons
// @Produce json
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /lessons [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := h.service.ListLessons(r.Context(), middlewarectx.ActorFrom(r.Context()), params.Page(r, h.pageSize))
	if err != nil {
		log.Error("failed to list lessons", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	log.Debug("lessons listed", slog.Int("count", len(page.Results)))
	render.JSON(w, r, response.StatusOKWithData(page))
}
