// Package profile обрабатывает чтение профиля пользователя.
package profile

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

// Service чтение профиля.
type Service interface {
	Profile(ctx context.Context, actor policy.Actor, id int64) (models.ProfileView, error)
}

// Handler обработчик GET /users/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Description Владелец получает приватный профиль с историей платежей, остальные публичный.
// @Tags Users
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response{data=models.PrivateProfile}
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.profile"

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

	view, err := h.service.Profile(r.Context(), middlewarectx.ActorFrom(r.Context()), id)
	if err != nil {
		log.Error("failed to read profile", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Debug("profile read", slog.Int64("user_id", id), slog.Bool("private", view.IsPrivate()))
	render.JSON(w, r, response.StatusOKWithData(view.Body()))
}
