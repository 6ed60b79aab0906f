package params

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natalia-epifanova/course-marketplace/internal/models"
)

func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"15", 15, false},
		{"abc", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ID(withID(httptest.NewRequest(http.MethodGet, "/", nil), tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPage(t *testing.T) {
	tests := []struct {
		query string
		want  models.Page
	}{
		{"", models.Page{Number: 1, Size: 10}},
		{"?page=3&page_size=25", models.Page{Number: 3, Size: 25}},
		{"?page=-1&page_size=1000", models.Page{Number: 1, Size: 10}},
		{"?page=x&page_size=y", models.Page{Number: 1, Size: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Page(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), 10))
		})
	}
}

func TestPaymentFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?paid_course=4&payment_method=cash&ordering=payment_date&page=2", nil)
	f, err := PaymentFilter(r, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), *f.PaidCourseID)
	assert.Nil(t, f.PaidLessonID)
	assert.Equal(t, models.PaymentMethodCash, *f.Method)
	assert.True(t, f.Ascending)
	assert.Equal(t, 2, f.Page.Number)

	bad := []string{"?paid_lesson=x", "?payment_method=card", "?ordering=amount"}
	for _, q := range bad {
		_, err := PaymentFilter(httptest.NewRequest(http.MethodGet, "/"+q, nil), 10)
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr, q)
	}
}
