package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/natalia-epifanova/course-marketplace/internal/models"
)

const courseColumns = `id, name, description, preview, owner_id, last_update, created_at`

func scanCourse(row rowScanner) (*models.Course, error) {
	c := &models.Course{}
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Preview, &c.OwnerID,
		&c.LastUpdate, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCourse сохраняет курс и возвращает его с ID и метками времени.
func (s *Storage) CreateCourse(ctx context.Context, c models.Course) (*models.Course, error) {
	const op = "storage.CreateCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO courses (name, description, preview, owner_id, last_update)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+courseColumns,
		c.Name, c.Description, c.Preview, c.OwnerID, c.LastUpdate)
	created, err := scanCourse(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return created, nil
}

// GetCourse возвращает курс по ID.
func (s *Storage) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	const op = "storage.GetCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	c, err := scanCourse(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return c, nil
}

// ListCourses возвращает страницу курсов и их общее число.
func (s *Storage) ListCourses(ctx context.Context, limit, offset int) ([]models.Course, int, error) {
	const op = "storage.ListCourses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return courses, total, nil
}

// UpdateCourse сохраняет редактируемые поля курса и last_update.
func (s *Storage) UpdateCourse(ctx context.Context, c models.Course) error {
	const op = "storage.UpdateCourse"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE courses SET name = $1, description = $2, preview = $3, last_update = $4
		WHERE id = $5`,
		c.Name, c.Description, c.Preview, c.LastUpdate, c.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	return affected(res, op)
}

// TouchCourse выставляет last_update курса.
func (s *Storage) TouchCourse(ctx context.Context, id int64, at time.Time) error {
	const op = "storage.TouchCourse"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE courses SET last_update = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}

// DeleteCourse удаляет курс вместе с уроками и подписками.
func (s *Storage) DeleteCourse(ctx context.Context, id int64) error {
	const op = "storage.DeleteCourse"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}

// ListCourseIDsByParticipant возвращает ID курсов, которыми владеет пользователь
// или в которых у него есть уроки.
func (s *Storage) ListCourseIDsByParticipant(ctx context.Context, userID int64) ([]int64, error) {
	const op = "storage.ListCourseIDsByParticipant"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id FROM courses WHERE owner_id = $1
		UNION
		SELECT course_id FROM lessons WHERE owner_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}
