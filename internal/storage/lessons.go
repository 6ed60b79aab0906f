package storage

import (
	"context"
	"fmt"

	"github.com/natalia-epifanova/course-marketplace/internal/models"
)

const lessonColumns = `id, name, description, preview, video_link, course_id, owner_id, created_at`

func scanLesson(row rowScanner) (*models.Lesson, error) {
	l := &models.Lesson{}
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Preview, &l.VideoLink,
		&l.CourseID, &l.OwnerID, &l.CreatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

func scanLessons(op string, rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]models.Lesson, error) {
	var lessons []models.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		lessons = append(lessons, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lessons, nil
}

// CreateLesson сохраняет урок. Несуществующий курс дает ErrNotFound.
func (s *Storage) CreateLesson(ctx context.Context, l models.Lesson) (*models.Lesson, error) {
	const op = "storage.CreateLesson"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO lessons (name, description, preview, video_link, course_id, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+lessonColumns,
		l.Name, l.Description, l.Preview, l.VideoLink, l.CourseID, l.OwnerID)
	created, err := scanLesson(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return created, nil
}

// GetLesson возвращает урок по ID.
func (s *Storage) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	const op = "storage.GetLesson"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id)
	l, err := scanLesson(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return l, nil
}

// ListLessons возвращает страницу уроков. Если ownerID задан, только уроки владельца.
func (s *Storage) ListLessons(ctx context.Context, ownerID *int64, limit, offset int) ([]models.Lesson, int, error) {
	const op = "storage.ListLessons"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	where := ""
	args := []any{}
	if ownerID != nil {
		where = ` WHERE owner_id = $1`
		args = append(args, *ownerID)
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM lessons`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM lessons%s ORDER BY id LIMIT $%d OFFSET $%d`,
		lessonColumns, where, len(args)+1, len(args)+2)
	rows, err := s.DB.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	lessons, err := scanLessons(op, rows)
	if err != nil {
		return nil, 0, err
	}
	return lessons, total, nil
}

// ListLessonsByCourse возвращает все уроки курса.
func (s *Storage) ListLessonsByCourse(ctx context.Context, courseID int64) ([]models.Lesson, error) {
	const op = "storage.ListLessonsByCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE course_id = $1 ORDER BY id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return scanLessons(op, rows)
}

// UpdateLesson сохраняет редактируемые поля урока.
func (s *Storage) UpdateLesson(ctx context.Context, l models.Lesson) error {
	const op = "storage.UpdateLesson"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE lessons SET name = $1, description = $2, preview = $3, video_link = $4, course_id = $5
		WHERE id = $6`,
		l.Name, l.Description, l.Preview, l.VideoLink, l.CourseID, l.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	return affected(res, op)
}

// DeleteLesson удаляет урок.
func (s *Storage) DeleteLesson(ctx context.Context, id int64) error {
	const op = "storage.DeleteLesson"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}
