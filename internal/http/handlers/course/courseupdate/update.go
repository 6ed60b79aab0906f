// Package courseupdate обрабатывает частичное обновление курса.
package courseupdate

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

// Service обновление курса.
type Service interface {
	UpdateCourse(ctx context.Context, actor policy.Actor, id int64, patch models.CoursePatch) (*models.Course, error)
}

// Handler обработчик PATCH /courses/{id}.
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
// @Summary Обновить курс
// @Description Частичное обновление. Если курс не менялся больше 4 часов, подписчики получат письмо.
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "ID курса"
// @Param request body models.CoursePatch true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Course}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /courses/{id} [patch]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.update"

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

	var req models.CoursePatch
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

	course, err := h.service.UpdateCourse(r.Context(), middlewarectx.ActorFrom(r.Context()), id, req)
	if err != nil {
		log.Error("failed to update course", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("course updated", slog.Int64("course_id", id))
	render.JSON(w, r, response.StatusOKWithData(course))
}
