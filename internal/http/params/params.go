// Package params разбирает параметры пути и строки запроса.
package params

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/natalia-epifanova/course-marketplace/internal/models"
)

// MaxPageSize верхняя граница размера страницы.
const MaxPageSize = 100

// ErrInvalidID идентификатор в пути не является положительным числом.
var ErrInvalidID = errors.New("invalid id")

// ID читает положительный идентификатор из параметра пути {id}.
func ID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// Page читает page и page_size. Некорректные значения заменяются значениями по умолчанию.
func Page(r *http.Request, defaultSize int) models.Page {
	q := r.URL.Query()
	number, err := strconv.Atoi(q.Get("page"))
	if err != nil || number < 1 {
		number = 1
	}
	size, err := strconv.Atoi(q.Get("page_size"))
	if err != nil || size < 1 || size > MaxPageSize {
		size = defaultSize
	}
	return models.Page{Number: number, Size: size}
}

// PaymentFilter читает фильтры paid_course, paid_lesson, payment_method и
// сортировку ordering=payment_date|-payment_date.
func PaymentFilter(r *http.Request, defaultSize int) (models.PaymentFilter, error) {
	q := r.URL.Query()
	f := models.PaymentFilter{Page: Page(r, defaultSize)}

	if v := q.Get("paid_course"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, models.NewValidationError("paid_course must be a number")
		}
		f.PaidCourseID = &id
	}
	if v := q.Get("paid_lesson"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, models.NewValidationError("paid_lesson must be a number")
		}
		f.PaidLessonID = &id
	}
	if v := q.Get("payment_method"); v != "" {
		method := models.PaymentMethod(v)
		switch method {
		case models.PaymentMethodCash, models.PaymentMethodTransfer, models.PaymentMethodStripe:
			f.Method = &method
		default:
			return f, models.NewValidationError("payment_method must be one of: cash, transfer, stripe")
		}
	}
	switch strings.TrimSpace(q.Get("ordering")) {
	case "", "-payment_date":
	case "payment_date":
		f.Ascending = true
	default:
		return f, models.NewValidationError("ordering must be payment_date or -payment_date")
	}
	return f, nil
}
