// Package catalog реализует жизненный цикл курсов и уроков: проверку прав,
// сохранение, кэш карточек и постановку заданий на рассылку при обновлении.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/natalia-epifanova/course-marketplace/internal/cache"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/metrics"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/sl"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/validate"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

// DefaultStalenessThreshold период, после которого правка курса считается
// обновлением, о котором сообщают подписчикам.
const DefaultStalenessThreshold = 4 * time.Hour

// Repository хранилище курсов и уроков.
type Repository interface {
	CreateCourse(ctx context.Context, c models.Course) (*models.Course, error)
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	ListCourses(ctx context.Context, limit, offset int) ([]models.Course, int, error)
	UpdateCourse(ctx context.Context, c models.Course) error
	TouchCourse(ctx context.Context, id int64, at time.Time) error
	DeleteCourse(ctx context.Context, id int64) error

	CreateLesson(ctx context.Context, l models.Lesson) (*models.Lesson, error)
	GetLesson(ctx context.Context, id int64) (*models.Lesson, error)
	ListLessons(ctx context.Context, ownerID *int64, limit, offset int) ([]models.Lesson, int, error)
	ListLessonsByCourse(ctx context.Context, courseID int64) ([]models.Lesson, error)
	UpdateLesson(ctx context.Context, l models.Lesson) error
	DeleteLesson(ctx context.Context, id int64) error
}

// CardCache кэш карточек курсов.
type CardCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// JobSubmitter принимает задания на рассылку уведомлений.
type JobSubmitter interface {
	Submit(ctx context.Context, job models.CourseUpdatedJob) error
}

// Options параметры сервиса.
type Options struct {
	StalenessThreshold time.Duration
	AllowedVideoHosts  []string
	CacheTTL           time.Duration
	Now                func() time.Time
}

// Service оркестрирует операции над курсами и уроками.
type Service struct {
	repo   Repository
	cards  CardCache
	jobs   JobSubmitter
	policy *policy.Engine
	log    *slog.Logger
	opts   Options
}

// NewService создает Service. cards может быть nil, тогда карточки не кэшируются.
func NewService(repo Repository, cards CardCache, jobs JobSubmitter, engine *policy.Engine, log *slog.Logger, opts Options) *Service {
	if opts.StalenessThreshold <= 0 {
		opts.StalenessThreshold = DefaultStalenessThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:   repo,
		cards:  cards,
		jobs:   jobs,
		policy: engine,
		log:    log,
		opts:   opts,
	}
}

// CreateCourse создает курс, владельцем становится текущий пользователь.
func (s *Service) CreateCourse(ctx context.Context, actor policy.Actor, in models.CourseInput) (*models.Course, error) {
	const op = "services.catalog.CreateCourse"

	if err := s.policy.Authorize(actor, policy.ActionCreate, policy.ForKind(policy.KindCourse)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	owner := actor.UserID
	course, err := s.repo.CreateCourse(ctx, models.Course{
		Name:        in.Name,
		Description: in.Description,
		Preview:     in.Preview,
		OwnerID:     &owner,
		LastUpdate:  s.opts.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return course, nil
}

// GetCourse возвращает карточку курса с уроками.
func (s *Service) GetCourse(ctx context.Context, actor policy.Actor, id int64) (*models.CourseDetail, error) {
	const op = "services.catalog.GetCourse"

	if detail, ok := s.cachedDetail(ctx, id); ok {
		if err := s.policy.Authorize(actor, policy.ActionRead, policy.ForCourse(detail.Course)); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return detail, nil
	}

	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.policy.Authorize(actor, policy.ActionRead, policy.ForCourse(*course)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lessons, err := s.repo.ListLessonsByCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	detail := &models.CourseDetail{Course: *course, LessonsCount: len(lessons), Lessons: lessons}

	if s.cards != nil {
		if err := s.cards.Set(ctx, cache.CourseKey(id), detail, s.opts.CacheTTL); err != nil {
			s.log.Warn("failed to cache course", sl.Op(op), slog.Int64("course_id", id), sl.Err(err))
		}
	}
	return detail, nil
}

// ListCourses постраничный список курсов.
func (s *Service) ListCourses(ctx context.Context, actor policy.Actor, page models.Page) (models.Paginated[models.Course], error) {
	const op = "services.catalog.ListCourses"

	if err := s.policy.Authorize(actor, policy.ActionList, policy.ForKind(policy.KindCourse)); err != nil {
		return models.Paginated[models.Course]{}, fmt.Errorf("%s: %w", op, err)
	}
	list, total, err := s.repo.ListCourses(ctx, page.Limit(), page.Offset())
	if err != nil {
		return models.Paginated[models.Course]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPaginated(list, total, page), nil
}

// UpdateCourse применяет частичное обновление. Если курс не менялся дольше
// порога устаревания, подписчикам ставится задание на рассылку.
func (s *Service) UpdateCourse(ctx context.Context, actor policy.Actor, id int64, patch models.CoursePatch) (*models.Course, error) {
	const op = "services.catalog.UpdateCourse"

	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ForCourse(*course)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if patch.Name != nil {
		course.Name = *patch.Name
	}
	if patch.Description != nil {
		course.Description = patch.Description
	}
	if patch.Preview != nil {
		course.Preview = patch.Preview
	}

	now := s.opts.Now()
	stale := s.isStale(course.LastUpdate, now)
	course.LastUpdate = now

	if err := s.repo.UpdateCourse(ctx, *course); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)

	if stale {
		s.enqueue(ctx, id, now)
	}
	return course, nil
}

// DeleteCourse удаляет курс вместе с уроками и подписками.
func (s *Service) DeleteCourse(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "services.catalog.DeleteCourse"

	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ForCourse(*course)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	return nil
}

// CreateLesson создает урок в существующем курсе.
func (s *Service) CreateLesson(ctx context.Context, actor policy.Actor, in models.LessonInput) (*models.Lesson, error) {
	const op = "services.catalog.CreateLesson"

	if err := s.policy.Authorize(actor, policy.ActionCreate, policy.ForKind(policy.KindLesson)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkVideoLink(in.VideoLink); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkCourseExists(ctx, in.CourseID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	owner := actor.UserID
	lesson, err := s.repo.CreateLesson(ctx, models.Lesson{
		Name:        in.Name,
		Description: in.Description,
		Preview:     in.Preview,
		VideoLink:   in.VideoLink,
		CourseID:    in.CourseID,
		OwnerID:     &owner,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, in.CourseID)
	return lesson, nil
}

// GetLesson возвращает урок.
func (s *Service) GetLesson(ctx context.Context, actor policy.Actor, id int64) (*models.Lesson, error) {
	const op = "services.catalog.GetLesson"

	lesson, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.policy.Authorize(actor, policy.ActionRead, policy.ForLesson(*lesson)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lesson, nil
}

// ListLessons модератор видит все уроки, остальные только свои.
func (s *Service) ListLessons(ctx context.Context, actor policy.Actor, page models.Page) (models.Paginated[models.Lesson], error) {
	const op = "services.catalog.ListLessons"

	if err := s.policy.Authorize(actor, policy.ActionList, policy.ForKind(policy.KindLesson)); err != nil {
		return models.Paginated[models.Lesson]{}, fmt.Errorf("%s: %w", op, err)
	}
	var owner *int64
	if !policy.IsModerator(actor) {
		id := actor.UserID
		owner = &id
	}
	list, total, err := s.repo.ListLessons(ctx, owner, page.Limit(), page.Offset())
	if err != nil {
		return models.Paginated[models.Lesson]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPaginated(list, total, page), nil
}

// UpdateLesson применяет частичное обновление урока. Порог устаревания
// проверяется по родительскому курсу; при срабатывании курс получает новое
// время обновления и ставится задание на рассылку.
func (s *Service) UpdateLesson(ctx context.Context, actor policy.Actor, id int64, patch models.LessonPatch) (*models.Lesson, error) {
	const op = "services.catalog.UpdateLesson"

	lesson, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ForLesson(*lesson)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkVideoLink(patch.VideoLink); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	previousCourse := lesson.CourseID
	if patch.Name != nil {
		lesson.Name = *patch.Name
	}
	if patch.Description != nil {
		lesson.Description = patch.Description
	}
	if patch.Preview != nil {
		lesson.Preview = patch.Preview
	}
	if patch.VideoLink != nil {
		lesson.VideoLink = patch.VideoLink
	}
	if patch.CourseID != nil && *patch.CourseID != lesson.CourseID {
		if err := s.checkCourseExists(ctx, *patch.CourseID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		lesson.CourseID = *patch.CourseID
	}

	if err := s.repo.UpdateLesson(ctx, *lesson); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, previousCourse, lesson.CourseID)

	course, err := s.repo.GetCourse(ctx, lesson.CourseID)
	if err != nil {
		s.log.Error("failed to load parent course", sl.Op(op), slog.Int64("course_id", lesson.CourseID), sl.Err(err))
		return lesson, nil
	}
	now := s.opts.Now()
	if s.isStale(course.LastUpdate, now) {
		if err := s.repo.TouchCourse(ctx, course.ID, now); err != nil {
			s.log.Error("failed to touch course", sl.Op(op), slog.Int64("course_id", course.ID), sl.Err(err))
			return lesson, nil
		}
		s.enqueue(ctx, course.ID, now)
	}
	return lesson, nil
}

// DeleteLesson удаляет урок.
func (s *Service) DeleteLesson(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "services.catalog.DeleteLesson"

	lesson, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ForLesson(*lesson)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteLesson(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, lesson.CourseID)
	return nil
}

func (s *Service) isStale(lastUpdate, now time.Time) bool {
	return now.Sub(lastUpdate) > s.opts.StalenessThreshold
}

// enqueue ставит задание на рассылку. Ошибка очереди не отменяет сохраненную правку.
func (s *Service) enqueue(ctx context.Context, courseID int64, at time.Time) {
	const op = "services.catalog.enqueue"

	if s.jobs == nil {
		return
	}
	job := models.CourseUpdatedJob{CourseID: courseID, UpdatedAt: at}
	if err := s.jobs.Submit(ctx, job); err != nil {
		s.log.Error("failed to submit course update job", sl.Op(op), slog.Int64("course_id", courseID), sl.Err(err))
		return
	}
	metrics.JobsEnqueued.Inc()
	s.log.Info("course update job submitted", sl.Op(op), slog.Int64("course_id", courseID))
}

func (s *Service) cachedDetail(ctx context.Context, id int64) (*models.CourseDetail, bool) {
	const op = "services.catalog.cachedDetail"

	if s.cards == nil {
		return nil, false
	}
	var detail models.CourseDetail
	found, err := s.cards.Get(ctx, cache.CourseKey(id), &detail)
	if err != nil {
		s.log.Warn("cache read failed", sl.Op(op), slog.Int64("course_id", id), sl.Err(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &detail, true
}

func (s *Service) invalidate(ctx context.Context, courseIDs ...int64) {
	const op = "services.catalog.invalidate"

	if s.cards == nil {
		return
	}
	keys := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		keys = append(keys, cache.CourseKey(id))
	}
	if err := s.cards.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("cache invalidation failed", sl.Op(op), sl.Err(err))
	}
}

func (s *Service) checkVideoLink(link *string) error {
	if link == nil || len(s.opts.AllowedVideoHosts) == 0 {
		return nil
	}
	if !validate.VideoLinkAllowed(s.opts.AllowedVideoHosts, *link) {
		return models.NewValidationError("video_link: only links to approved video hosts are allowed")
	}
	return nil
}

func (s *Service) checkCourseExists(ctx context.Context, courseID int64) error {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &models.ValidationError{Msg: fmt.Sprintf("course %d does not exist", courseID), Err: err}
		}
		return err
	}
	return nil
}
