// Package scheduler запускает периодическую деактивацию неактивных пользователей.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/natalia-epifanova/course-marketplace/internal/lib/metrics"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
)

// Deactivator выключает пользователей, не входивших дольше period.
type Deactivator interface {
	DeactivateInactive(ctx context.Context, now time.Time, period time.Duration) (int64, error)
}

// Service расписание фоновых задач.
type Service struct {
	users  Deactivator
	log    *slog.Logger
	spec   string
	period time.Duration
	now    func() time.Time
}

// NewService создает Service. spec задается в формате cron из пяти полей.
func NewService(users Deactivator, log *slog.Logger, spec string, period time.Duration) *Service {
	return &Service{
		users:  users,
		log:    log,
		spec:   spec,
		period: period,
		now:    time.Now,
	}
}

// Start регистрирует задачу и блокируется до отмены ctx, после чего дожидается
// завершения уже запущенного прогона.
func (s *Service) Start(ctx context.Context) error {
	const op = "services.scheduler.Start"

	c := cron.New()
	if _, err := c.AddFunc(s.spec, func() { s.RunDeactivation(ctx) }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.Start()
	s.log.Info("scheduler started", sl.Op(op), slog.String("spec", s.spec), slog.Duration("period", s.period))

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("scheduler stopped", sl.Op(op))
	return nil
}

// RunDeactivation один прогон деактивации.
func (s *Service) RunDeactivation(ctx context.Context) {
	const op = "services.scheduler.RunDeactivation"

	s.log.Info("starting inactive users deactivation", sl.Op(op))
	n, err := s.users.DeactivateInactive(ctx, s.now(), s.period)
	if err != nil {
		s.log.Error("failed to deactivate users", sl.Op(op), sl.Err(err))
		return
	}
	metrics.UsersDeactivated.Add(float64(n))
	s.log.Info("inactive users deactivation finished", sl.Op(op), slog.Int64("count", n))
}
