// Package coursecreate обрабатывает создание курса.
package coursecreate

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

// Service создание курса.
type Service interface {
	CreateCourse(ctx context.Context, actor policy.Actor, in models.CourseInput) (*models.Course, error)
}

// Handler обработчик POST /courses.
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
// @Summary Создать курс
// @Description Создает курс, владельцем становится текущий пользователь. Модераторам запрещено.
// @Tags Courses
// @Accept json
// @Produce json
// @Param request body models.CourseInput true "Данные курса"
// @Success 201 {object} response.Response{data=models.Course}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /courses [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CourseInput
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

	course, err := h.service.CreateCourse(r.Context(), middlewarectx.ActorFrom(r.Context()), req)
	if err != nil {
		log.Error("failed to create course", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("course created", slog.Int64("course_id", course.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(course))
}
