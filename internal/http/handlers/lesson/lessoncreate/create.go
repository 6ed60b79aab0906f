// Package lessoncreate обрабатывает создание урока.
package lessoncreate

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

// Service создание урока.
type Service interface {
	CreateLesson(ctx context.Context, actor policy.Actor, in models.LessonInput) (*models.Lesson, error)
}

// Handler обработчик POST /lessons.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler. validate должен знать тег videohost.
func New(log *slog.Logger, service Service, validate *validator.Validate) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate,
	}
}

// ServeHTTP godoc
// @Summary Создать урок
// @Description Создает урок в курсе. Ссылка на видео должна вести на разрешенный хостинг.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param request body models.LessonInput true "Данные урока"
// @Success 201 {object} response.Response{data=models.Lesson}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /lessons [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.LessonInput
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

	lesson, err := h.service.CreateLesson(r.Context(), middlewarectx.ActorFrom(r.Context()), req)
	if err != nil {
		log.Error("failed to create lesson", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("lesson created", slog.Int64("lesson_id", lesson.ID), slog.Int64("course_id", lesson.CourseID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(lesson))
}
