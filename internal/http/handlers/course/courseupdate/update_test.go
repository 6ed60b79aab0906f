package courseupdate

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
)

type MockService struct {
	mock.Mock
}

func (m *MockService) UpdateCourse(ctx context.Context, actor policy.Actor, id int64, patch models.CoursePatch) (*models.Course, error) {
	args := m.Called(ctx, actor, id, patch)
	if res := args.Get(0); res != nil {
		return res.(*models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	moderator := policy.Actor{UserID: 3, Authenticated: true, Moderator: true}

	tests := []struct {
		name           string
		id             string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "модератор правит название",
			id:   "10",
			body: `{"name":"Go 2"}`,
			setupMock: func(m *MockService) {
				m.On("UpdateCourse", mock.Anything, moderator, int64(10), mock.MatchedBy(func(p models.CoursePatch) bool {
					return p.Name != nil && *p.Name == "Go 2" && p.Description == nil
				})).Return(&models.Course{ID: 10, Name: "Go 2"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Go 2"`,
		},
		{
			name:           "слишком длинное название",
			id:             "10",
			body:           `{"name":"` + strings.Repeat("x", 101) + `"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Name must be at most 100 characters`,
		},
		{
			name:           "некорректный id",
			id:             "x",
			body:           `{}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode id from url`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPatch, "/courses/"+tt.id, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithActor(ctx, moderator))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
