package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/natalia-epifanova/course-marketplace/internal/cache"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
	"github.com/natalia-epifanova/course-marketplace/internal/services/catalog"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateCourse(ctx context.Context, c models.Course) (*models.Course, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *RepoMock) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// копия, чтобы сервис не менял фикстуру теста
	c := *args.Get(0).(*models.Course)
	return &c, args.Error(1)
}

func (m *RepoMock) ListCourses(ctx context.Context, limit, offset int) ([]models.Course, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Course), args.Int(1), args.Error(2)
}

func (m *RepoMock) UpdateCourse(ctx context.Context, c models.Course) error {
	return m.Called(ctx, c).Error(0)
}

func (m *RepoMock) TouchCourse(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *RepoMock) DeleteCourse(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RepoMock) CreateLesson(ctx context.Context, l models.Lesson) (*models.Lesson, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *RepoMock) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	l := *args.Get(0).(*models.Lesson)
	return &l, args.Error(1)
}

func (m *RepoMock) ListLessons(ctx context.Context, ownerID *int64, limit, offset int) ([]models.Lesson, int, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	return args.Get(0).([]models.Lesson), args.Int(1), args.Error(2)
}

func (m *RepoMock) ListLessonsByCourse(ctx context.Context, courseID int64) ([]models.Lesson, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]models.Lesson), args.Error(1)
}

func (m *RepoMock) UpdateLesson(ctx context.Context, l models.Lesson) error {
	return m.Called(ctx, l).Error(0)
}

func (m *RepoMock) DeleteLesson(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type JobsMock struct {
	mock.Mock
}

func (m *JobsMock) Submit(ctx context.Context, job models.CourseUpdatedJob) error {
	return m.Called(ctx, job).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

var (
	now       = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	alice     = policy.Actor{UserID: 1, Authenticated: true}
	bob       = policy.Actor{UserID: 2, Authenticated: true}
	moderator = policy.Actor{UserID: 3, Authenticated: true, Moderator: true}
)

func newService(repo *RepoMock, cards catalog.CardCache, jobs *JobsMock) *catalog.Service {
	return catalog.NewService(repo, cards, jobs, policy.NewEngine(), newNoopLogger(), catalog.Options{
		StalenessThreshold: 4 * time.Hour,
		AllowedVideoHosts:  []string{"youtube"},
		CacheTTL:           time.Minute,
		Now:                func() time.Time { return now },
	})
}

func TestService_CreateCourse(t *testing.T) {
	t.Run("user becomes owner", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateCourse", mock.Anything, mock.MatchedBy(func(c models.Course) bool {
			return c.Name == "Go" && c.OwnerID != nil && *c.OwnerID == 1 && c.LastUpdate.Equal(now)
		})).Return(&models.Course{ID: 10, Name: "Go", OwnerID: ptr(int64(1))}, nil).Once()

		c, err := newService(repo, nil, nil).CreateCourse(context.Background(), alice, models.CourseInput{Name: "Go"})
		require.NoError(t, err)
		assert.Equal(t, int64(10), c.ID)
		repo.AssertExpectations(t)
	})

	t.Run("moderator cannot create", func(t *testing.T) {
		repo := new(RepoMock)
		_, err := newService(repo, nil, nil).CreateCourse(context.Background(), moderator, models.CourseInput{Name: "Go"})
		assert.ErrorIs(t, err, policy.ErrForbidden)
		repo.AssertNotCalled(t, "CreateCourse", mock.Anything, mock.Anything)
	})
}

func TestService_GetCourse(t *testing.T) {
	mr := miniredis.RunT(t)
	cards := &cache.Cache{Db: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	course := &models.Course{ID: 10, Name: "Go", OwnerID: ptr(int64(1))}
	repo := new(RepoMock)
	repo.On("GetCourse", mock.Anything, int64(10)).Return(course, nil).Once()
	repo.On("ListLessonsByCourse", mock.Anything, int64(10)).
		Return([]models.Lesson{{ID: 1, CourseID: 10}, {ID: 2, CourseID: 10}}, nil).Once()
	svc := newService(repo, cards, nil)

	detail, err := svc.GetCourse(context.Background(), alice, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.LessonsCount)
	assert.True(t, mr.Exists(cache.CourseKey(10)))

	// повторное чтение из кэша, права проверяются заново
	detail, err = svc.GetCourse(context.Background(), moderator, 10)
	require.NoError(t, err)
	assert.Len(t, detail.Lessons, 2)

	_, err = svc.GetCourse(context.Background(), bob, 10)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	repo.AssertExpectations(t)
}

func TestService_UpdateCourse_Staleness(t *testing.T) {
	tests := []struct {
		name       string
		lastUpdate time.Time
		wantJob    bool
	}{
		{"stale course notifies subscribers", now.Add(-5 * time.Hour), true},
		{"fresh course is silent", now.Add(-time.Hour), false},
		{"exactly at threshold is silent", now.Add(-4 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			jobs := new(JobsMock)
			repo.On("GetCourse", mock.Anything, int64(10)).
				Return(&models.Course{ID: 10, Name: "Go", OwnerID: ptr(int64(1)), LastUpdate: tt.lastUpdate}, nil).Once()
			repo.On("UpdateCourse", mock.Anything, mock.MatchedBy(func(c models.Course) bool {
				return c.Name == "Go 2" && c.LastUpdate.Equal(now)
			})).Return(nil).Once()
			if tt.wantJob {
				jobs.On("Submit", mock.Anything, models.CourseUpdatedJob{CourseID: 10, UpdatedAt: now}).Return(nil).Once()
			}

			c, err := newService(repo, nil, jobs).UpdateCourse(context.Background(), alice, 10,
				models.CoursePatch{Name: ptr("Go 2")})
			require.NoError(t, err)
			assert.True(t, c.LastUpdate.Equal(now))

			repo.AssertExpectations(t)
			jobs.AssertExpectations(t)
			if !tt.wantJob {
				jobs.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestService_UpdateCourse_SubmitFailureKeepsUpdate(t *testing.T) {
	repo := new(RepoMock)
	jobs := new(JobsMock)
	repo.On("GetCourse", mock.Anything, int64(10)).
		Return(&models.Course{ID: 10, OwnerID: ptr(int64(1)), LastUpdate: now.Add(-24 * time.Hour)}, nil).Once()
	repo.On("UpdateCourse", mock.Anything, mock.Anything).Return(nil).Once()
	jobs.On("Submit", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := newService(repo, nil, jobs).UpdateCourse(context.Background(), moderator, 10, models.CoursePatch{})
	require.NoError(t, err)
	jobs.AssertExpectations(t)
}

func TestService_UpdateCourse_Forbidden(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetCourse", mock.Anything, int64(10)).
		Return(&models.Course{ID: 10, OwnerID: ptr(int64(1))}, nil).Once()

	_, err := newService(repo, nil, nil).UpdateCourse(context.Background(), bob, 10, models.CoursePatch{Name: ptr("x")})
	assert.ErrorIs(t, err, policy.ErrForbidden)
	repo.AssertNotCalled(t, "UpdateCourse", mock.Anything, mock.Anything)
}

func TestService_DeleteCourse(t *testing.T) {
	course := &models.Course{ID: 10, OwnerID: ptr(int64(1))}

	tests := []struct {
		name    string
		actor   policy.Actor
		wantErr error
	}{
		{"owner deletes", alice, nil},
		{"non-moderator stranger deletes", bob, nil},
		{"moderator cannot delete others course", moderator, policy.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetCourse", mock.Anything, int64(10)).Return(course, nil).Once()
			if tt.wantErr == nil {
				repo.On("DeleteCourse", mock.Anything, int64(10)).Return(nil).Once()
			}

			err := newService(repo, nil, nil).DeleteCourse(context.Background(), tt.actor, 10)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_CreateLesson(t *testing.T) {
	t.Run("lesson in existing course", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCourse", mock.Anything, int64(10)).Return(&models.Course{ID: 10}, nil).Once()
		repo.On("CreateLesson", mock.Anything, mock.MatchedBy(func(l models.Lesson) bool {
			return l.CourseID == 10 && *l.OwnerID == 1
		})).Return(&models.Lesson{ID: 5, CourseID: 10}, nil).Once()

		l, err := newService(repo, nil, nil).CreateLesson(context.Background(), alice, models.LessonInput{
			Name: "intro", CourseID: 10, VideoLink: ptr("https://www.YouTube.com/watch?v=1"),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), l.ID)
		repo.AssertExpectations(t)
	})

	t.Run("foreign video host is rejected", func(t *testing.T) {
		repo := new(RepoMock)
		_, err := newService(repo, nil, nil).CreateLesson(context.Background(), alice, models.LessonInput{
			Name: "intro", CourseID: 10, VideoLink: ptr("https://vimeo.com/1"),
		})
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
		repo.AssertNotCalled(t, "CreateLesson", mock.Anything, mock.Anything)
	})

	t.Run("unknown course is a validation error", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCourse", mock.Anything, int64(99)).Return(nil, storage.ErrNotFound).Once()
		_, err := newService(repo, nil, nil).CreateLesson(context.Background(), alice, models.LessonInput{Name: "x", CourseID: 99})
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("moderator cannot create", func(t *testing.T) {
		_, err := newService(new(RepoMock), nil, nil).CreateLesson(context.Background(), moderator, models.LessonInput{Name: "x", CourseID: 10})
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})
}

func TestService_UpdateLesson_TouchesStaleCourse(t *testing.T) {
	tests := []struct {
		name       string
		lastUpdate time.Time
		wantJob    bool
	}{
		{"stale parent course", now.Add(-6 * time.Hour), true},
		{"fresh parent course", now.Add(-30 * time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			jobs := new(JobsMock)
			repo.On("GetLesson", mock.Anything, int64(5)).
				Return(&models.Lesson{ID: 5, CourseID: 10, OwnerID: ptr(int64(1))}, nil).Once()
			repo.On("UpdateLesson", mock.Anything, mock.MatchedBy(func(l models.Lesson) bool {
				return l.Name == "renamed"
			})).Return(nil).Once()
			repo.On("GetCourse", mock.Anything, int64(10)).
				Return(&models.Course{ID: 10, LastUpdate: tt.lastUpdate}, nil).Once()
			if tt.wantJob {
				repo.On("TouchCourse", mock.Anything, int64(10), now).Return(nil).Once()
				jobs.On("Submit", mock.Anything, models.CourseUpdatedJob{CourseID: 10, UpdatedAt: now}).Return(nil).Once()
			}

			_, err := newService(repo, nil, jobs).UpdateLesson(context.Background(), alice, 5,
				models.LessonPatch{Name: ptr("renamed")})
			require.NoError(t, err)

			repo.AssertExpectations(t)
			jobs.AssertExpectations(t)
			if !tt.wantJob {
				repo.AssertNotCalled(t, "TouchCourse", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestService_ListLessons(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListLessons", mock.Anything, (*int64)(nil), 10, 0).
		Return([]models.Lesson{{ID: 1}, {ID: 2}}, 2, nil).Once()
	repo.On("ListLessons", mock.Anything, mock.MatchedBy(func(owner *int64) bool {
		return owner != nil && *owner == 1
	}), 10, 0).Return([]models.Lesson{{ID: 1}}, 1, nil).Once()
	svc := newService(repo, nil, nil)

	all, err := svc.ListLessons(context.Background(), moderator, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Count)

	own, err := svc.ListLessons(context.Background(), alice, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, own.Count)

	_, err = svc.ListLessons(context.Background(), policy.Actor{}, models.Page{})
	assert.ErrorIs(t, err, policy.ErrForbidden)
	repo.AssertExpectations(t)
}
