// Package courseread обрабатывает получение карточки курса.
package courseread

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

// Service чтение курса.
type Service interface {
	GetCourse(ctx context.Context, actor policy.Actor, id int64) (*models.CourseDetail, error)
}

// Handler обработчик GET /courses/{id}.
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
// @Summary Получить курс
// @Description Возвращает курс со списком уроков. Доступно владельцу и модераторам.
// @Tags Courses
// @Produce json
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response{data=models.CourseDetail}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /courses/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.read"

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

	detail, err := h.service.GetCourse(r.Context(), middlewarectx.ActorFrom(r.Context()), id)
	if err != nil {
		log.Error("failed to read course", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(detail))
}
