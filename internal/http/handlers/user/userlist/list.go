// Package userlist обрабатывает список пользователей для администратора.
package userlist

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

type Service interface {
	List(ctx context.Context, actor policy.Actor, page models.Page) (models.Paginated[models.PublicProfile], error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	pageSize int
}

func New(log *slog.Logger, service Service, pageSize int) *Handler {
	return &Handler{log: log, service: service, pageSize: pageSize}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Только для администратора.
// @Tags Users
// @Produce json
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /users [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := h.service.List(r.Context(), middlewarectx.ActorFrom(r.Context()), params.Page(r, h.pageSize))
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}
