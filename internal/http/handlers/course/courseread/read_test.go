package courseread

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/natalia-epifanova/course-marketplace/internal/http/middlewarectx"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) GetCourse(ctx context.Context, actor policy.Actor, id int64) (*models.CourseDetail, error) {
	args := m.Called(ctx, actor, id)
	if res := args.Get(0); res != nil {
		return res.(*models.CourseDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bob := policy.Actor{UserID: 2, Authenticated: true}

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное чтение курса",
			url:  "/courses/10",
			setupMock: func(m *MockService) {
				detail := &models.CourseDetail{
					Course:       models.Course{ID: 10, Name: "Go"},
					LessonsCount: 1,
					Lessons:      []models.Lesson{{ID: 1, Name: "intro", CourseID: 10}},
				}
				m.On("GetCourse", mock.Anything, bob, int64(10)).Return(detail, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"lessons_count":1`,
		},
		{
			name:           "некорректный id в URL",
			url:            "/courses/abc",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
		{
			name: "чужой курс",
			url:  "/courses/11",
			setupMock: func(m *MockService) {
				m.On("GetCourse", mock.Anything, bob, int64(11)).Return(nil, policy.ErrForbidden).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `permission denied`,
		},
		{
			name: "курс не найден",
			url:  "/courses/404",
			setupMock: func(m *MockService) {
				m.On("GetCourse", mock.Anything, bob, int64(404)).Return(nil, storage.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", strings.TrimPrefix(tt.url, "/courses/"))
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithActor(ctx, bob))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
