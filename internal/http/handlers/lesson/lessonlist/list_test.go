package lessonlist

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/natalia-epifanova/course-marketplace/internal/http/middlewarectx"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListLessons(ctx context.Context, actor policy.Actor, page models.Page) (models.Paginated[models.Lesson], error) {
	args := m.Called(ctx, actor, page)
	return args.Get(0).(models.Paginated[models.Lesson]), args.Error(1)
}

func TestListHandler(t *testing.T) {
	alice := policy.Actor{UserID: 1, Authenticated: true}
	svc := new(MockService)
	svc.On("ListLessons", mock.Anything, alice, models.Page{Number: 3, Size: 10}).
		Return(models.Paginated[models.Lesson]{
			Count:    21,
			Page:     3,
			PageSize: 10,
			Results:  []models.Lesson{{ID: 21, Name: "last"}},
		}, nil).Once()

	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, 10)
	req := httptest.NewRequest(http.MethodGet, "/lessons?page=3&page_size=500", nil)
	req = req.WithContext(middlewarectx.WithActor(req.Context(), alice))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":21`)
	assert.Contains(t, rr.Body.String(), `"name":"last"`)
	svc.AssertExpectations(t)
}
