package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddSubscription создает подписку, если ее еще нет. Возвращает false,
// если пара пользователь-курс уже существовала.
func (s *Storage) AddSubscription(ctx context.Context, userID, courseID int64) (bool, error) {
	const op = "storage.AddSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var id int64
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO subscriptions (user_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, course_id) DO NOTHING
		RETURNING id`, userID, courseID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, translate(err))
	}
	return true, nil
}

// RemoveSubscription удаляет подписку. Возвращает false, если удалять было нечего.
func (s *Storage) RemoveSubscription(ctx context.Context, userID, courseID int64) (bool, error) {
	const op = "storage.RemoveSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// IsSubscribed сообщает, подписан ли пользователь на курс.
func (s *Storage) IsSubscribed(ctx context.Context, userID, courseID int64) (bool, error) {
	const op = "storage.IsSubscribed"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListSubscriberEmails возвращает адреса подписчиков курса.
func (s *Storage) ListSubscriberEmails(ctx context.Context, courseID int64) ([]string, error) {
	const op = "storage.ListSubscriberEmails"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT u.email
		FROM subscriptions s
		JOIN users u ON u.id = s.user_id
		WHERE s.course_id = $1
		ORDER BY s.id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return emails, nil
}
