package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/natalia-epifanova/course-marketplace/internal/models"
)

const paymentColumns = `id, user_id, payment_date, paid_course_id, paid_lesson_id, payment_amount,
	payment_method, payment_status, stripe_product_id, stripe_price_id, stripe_session_id, stripe_payment_link`

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	if err := row.Scan(&p.ID, &p.UserID, &p.PaymentDate, &p.PaidCourseID, &p.PaidLessonID,
		&p.Amount, &p.Method, &p.Status, &p.ProductID, &p.PriceID, &p.SessionID, &p.PaymentLink); err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePayment сохраняет платеж и возвращает его с ID.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (*models.Payment, error) {
	const op = "storage.CreatePayment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO payments (user_id, payment_date, paid_course_id, paid_lesson_id, payment_amount,
			payment_method, payment_status, stripe_product_id, stripe_price_id, stripe_session_id,
			stripe_payment_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+paymentColumns,
		p.UserID, p.PaymentDate, p.PaidCourseID, p.PaidLessonID, p.Amount,
		p.Method, p.Status, p.ProductID, p.PriceID, p.SessionID, p.PaymentLink)
	created, err := scanPayment(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return created, nil
}

// GetPayment возвращает платеж по ID.
func (s *Storage) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	const op = "storage.GetPayment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	p, err := scanPayment(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return p, nil
}

// ListPayments возвращает страницу платежей по фильтру и общее число подходящих записей.
func (s *Storage) ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, int, error) {
	const op = "storage.ListPayments"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.PaidCourseID != nil {
		add("paid_course_id = $%d", *f.PaidCourseID)
	}
	if f.PaidLessonID != nil {
		add("paid_lesson_id = $%d", *f.PaidLessonID)
	}
	if f.Method != nil {
		add("payment_method = $%d", string(*f.Method))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM payments%s ORDER BY payment_date %s, id %s LIMIT $%d OFFSET $%d`,
		paymentColumns, where, order, order, len(args)+1, len(args)+2)
	rows, err := s.DB.QueryContext(ctx, query, append(args, f.Page.Limit(), f.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return payments, total, nil
}

// UpdatePaymentMethod меняет способ оплаты у платежа в статусе pending.
// Для платежа в другом статусе возвращает models.ErrConflict.
func (s *Storage) UpdatePaymentMethod(ctx context.Context, id int64, method models.PaymentMethod) error {
	const op = "storage.UpdatePaymentMethod"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE payments SET payment_method = $1 WHERE id = $2 AND payment_status = $3`,
		method, id, models.PaymentStatusPending)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrConflict)
	}
	return nil
}

// SetPaymentStatusBySession переводит ожидающий платеж с данной сессией в статус status.
// Возвращает false, если ожидающего платежа с такой сессией нет.
func (s *Storage) SetPaymentStatusBySession(ctx context.Context, sessionID string, status models.PaymentStatus) (bool, error) {
	const op = "storage.SetPaymentStatusBySession"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE payments SET payment_status = $1 WHERE stripe_session_id = $2 AND payment_status = $3`,
		status, sessionID, models.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// DeletePayment удаляет платеж, если он еще не оплачен.
func (s *Storage) DeletePayment(ctx context.Context, id int64) error {
	const op = "storage.DeletePayment"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM payments WHERE id = $1 AND payment_status <> $2`, id, models.PaymentStatusPaid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}
