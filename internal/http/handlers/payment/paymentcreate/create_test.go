package paymentcreate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/natalia-epifanova/course-marketplace/internal/http/middlewarectx"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, actor policy.Actor, in models.PaymentInput) (*models.Payment, error) {
	args := m.Called(ctx, actor, in)
	if res := args.Get(0); res != nil {
		return res.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateHandler(t *testing.T) {
	alice := policy.Actor{UserID: 1, Authenticated: true}
	course := int64(5)
	link := "https://checkout.stripe.com/c/pay/cs_test_1"

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "платеж за курс",
			body: `{"paid_course":5,"payment_amount":"19.99","payment_method":"stripe"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, alice, mock.MatchedBy(func(in models.PaymentInput) bool {
					return in.PaidCourseID != nil && *in.PaidCourseID == course &&
						in.Amount.Equal(decimal.RequireFromString("19.99")) &&
						in.Method == models.PaymentMethodStripe
				})).Return(&models.Payment{
					ID:           3,
					UserID:       1,
					PaidCourseID: &course,
					Amount:       decimal.RequireFromString("19.99"),
					Method:       models.PaymentMethodStripe,
					Status:       models.PaymentStatusPending,
					PaymentLink:  &link,
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"stripe_payment_link":"https://checkout.stripe.com/c/pay/cs_test_1"`,
		},
		{
			name:           "неизвестный способ оплаты",
			body:           `{"paid_course":5,"payment_amount":"1","payment_method":"barter"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Method must be one of: cash transfer stripe`,
		},
		{
			name: "курс и урок одновременно",
			body: `{"paid_course":5,"paid_lesson":6,"payment_amount":"1","payment_method":"cash"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, alice, mock.Anything).
					Return(nil, models.NewValidationError("exactly one of paid_course and paid_lesson must be set")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `exactly one of paid_course and paid_lesson must be set`,
		},
		{
			name: "провайдер недоступен",
			body: `{"paid_lesson":6,"payment_amount":"1","payment_method":"stripe"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, alice, mock.Anything).
					Return(nil, &models.ValidationError{Msg: "payment provider rejected the request", Err: errors.New("502")}).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"payment provider rejected the request"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			h := New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithActor(req.Context(), alice))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
