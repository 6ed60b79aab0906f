// Package notification рассылает подписчикам письма об обновлении курса.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/natalia-epifanova/course-marketplace/internal/lib/metrics"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

// Mailer отправляет одно письмо одному получателю.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Repository источник курса и адресов подписчиков.
type Repository interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	ListSubscriberEmails(ctx context.Context, courseID int64) ([]string, error)
}

// Service обрабатывает задания "курс обновлен".
type Service struct {
	repo   Repository
	mailer Mailer
	log    *slog.Logger
}

// NewService создает Service.
func NewService(repo Repository, mailer Mailer, log *slog.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, log: log}
}

// HandleMessage разбирает сообщение очереди и выполняет рассылку.
// Нечитаемое сообщение отбрасывается, чтобы не возвращаться в очередь бесконечно.
func (s *Service) HandleMessage(ctx context.Context, body []byte) error {
	const op = "services.notification.HandleMessage"

	var job models.CourseUpdatedJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("dropping malformed job", sl.Op(op), sl.Err(err))
		return nil
	}
	return s.NotifyCourseUpdated(ctx, job)
}

// NotifyCourseUpdated отправляет каждому подписчику отдельное письмо.
// Ошибка отправки одному получателю не мешает остальным и не возвращается,
// чтобы повтор задания не дублировал доставленные письма.
func (s *Service) NotifyCourseUpdated(ctx context.Context, job models.CourseUpdatedJob) error {
	const op = "services.notification.NotifyCourseUpdated"
	log := s.log.With(sl.Op(op), slog.Int64("course_id", job.CourseID))

	course, err := s.repo.GetCourse(ctx, job.CourseID)
	if errors.Is(err, storage.ErrNotFound) {
		log.Info("course no longer exists, nothing to send")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	emails, err := s.repo.ListSubscriberEmails(ctx, job.CourseID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	subject, body := courseUpdatedMessage(course)
	var sent, failed int
	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.mailer.Send(ctx, email, subject, body); err != nil {
			failed++
			metrics.NotificationsFailed.Inc()
			log.Error("failed to send notification", slog.String("email", email), sl.Err(err))
			continue
		}
		sent++
		metrics.NotificationsSent.Inc()
	}

	log.Info("course update notifications processed", slog.Int("sent", sent), slog.Int("failed", failed))
	return nil
}

// singleLine убирает управляющие переводы строк из названия для темы письма.
var singleLine = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func courseUpdatedMessage(c *models.Course) (string, string) {
	subject := fmt.Sprintf("Курс «%s» обновлен", singleLine.Replace(c.Name))
	body := fmt.Sprintf("Здравствуйте!\n\nВ курсе «%s», на который вы подписаны, появились изменения.\n"+
		"Загляните, чтобы ничего не пропустить.", c.Name)
	return subject, body
}
