package users_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/natalia-epifanova/course-marketplace/internal/cache"
	"github.com/natalia-epifanova/course-marketplace/internal/lib/password"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
	"github.com/natalia-epifanova/course-marketplace/internal/services/users"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}

func (m *UserRepoMock) UpdateUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepoMock) SetModerator(ctx context.Context, id int64, moderator bool) error {
	return m.Called(ctx, id, moderator).Error(0)
}

func (m *UserRepoMock) DeactivateInactive(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepoMock) ListCourseIDsByParticipant(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type CardCacheMock struct {
	mock.Mock
}

func (m *CardCacheMock) Invalidate(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

type PaymentHistoryMock struct {
	mock.Mock
}

func (m *PaymentHistoryMock) ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Payment), args.Int(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

var (
	alice = policy.Actor{UserID: 1, Authenticated: true}
	bob   = policy.Actor{UserID: 2, Authenticated: true}
	admin = policy.Actor{UserID: 9, Authenticated: true, Admin: true}
)

func newService(r *UserRepoMock, p *PaymentHistoryMock) *users.Service {
	return users.NewService(r, p, nil, policy.NewEngine(), newNoopLogger())
}

func TestService_Profile(t *testing.T) {
	phone := strPtr("+7 900 000 00 00")
	aliceUser := &models.User{ID: 1, Email: "alice@example.com", Phone: phone, City: strPtr("Moscow"), IsActive: true}

	tests := []struct {
		name        string
		actor       policy.Actor
		setupMocks  func(r *UserRepoMock, p *PaymentHistoryMock)
		wantPrivate bool
		wantErr     error
	}{
		{
			name:  "own profile is private with payments",
			actor: alice,
			setupMocks: func(r *UserRepoMock, p *PaymentHistoryMock) {
				r.On("GetUserByID", mock.Anything, int64(1)).Return(aliceUser, nil).Once()
				p.On("ListPayments", mock.Anything, mock.MatchedBy(func(f models.PaymentFilter) bool {
					return f.UserID != nil && *f.UserID == 1
				})).Return([]models.Payment{{ID: 5, UserID: 1}}, 1, nil).Once()
			},
			wantPrivate: true,
		},
		{
			name:  "foreign profile is public",
			actor: bob,
			setupMocks: func(r *UserRepoMock, _ *PaymentHistoryMock) {
				r.On("GetUserByID", mock.Anything, int64(1)).Return(aliceUser, nil).Once()
			},
		},
		{
			name:       "anonymous is rejected",
			actor:      policy.Actor{},
			setupMocks: func(*UserRepoMock, *PaymentHistoryMock) {},
			wantErr:    policy.ErrForbidden,
		},
		{
			name:  "missing user",
			actor: bob,
			setupMocks: func(r *UserRepoMock, _ *PaymentHistoryMock) {
				r.On("GetUserByID", mock.Anything, int64(1)).Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: storage.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			payments := new(PaymentHistoryMock)
			tt.setupMocks(repo, payments)

			view, err := newService(repo, payments).Profile(context.Background(), tt.actor, 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrivate, view.IsPrivate())
			if tt.wantPrivate {
				assert.Equal(t, phone, view.Private.Phone)
				assert.Len(t, view.Private.PaymentHistory, 1)
			} else {
				assert.Equal(t, "alice@example.com", view.Public.Email)
				assert.Equal(t, "Moscow", *view.Public.City)
			}
			repo.AssertExpectations(t)
			payments.AssertExpectations(t)
		})
	}
}

func TestService_Update(t *testing.T) {
	t.Run("owner changes city and password", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByID", mock.Anything, int64(1)).
			Return(&models.User{ID: 1, Email: "alice@example.com", PasswordHash: "old"}, nil).Once()
		repo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return *u.City == "Kazan" && password.CompareHash(u.PasswordHash, "newpass") == nil
		})).Return(nil).Once()

		profile, err := newService(repo, nil).Update(context.Background(), alice, 1,
			models.UserPatch{City: strPtr("Kazan"), Password: strPtr("newpass")})
		require.NoError(t, err)
		assert.Equal(t, "Kazan", *profile.City)
		assert.NotNil(t, profile.PaymentHistory)
		repo.AssertExpectations(t)
	})

	t.Run("foreign profile is forbidden", func(t *testing.T) {
		repo := new(UserRepoMock)
		_, err := newService(repo, nil).Update(context.Background(), bob, 1, models.UserPatch{City: strPtr("x")})
		assert.ErrorIs(t, err, policy.ErrForbidden)
		repo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	})
}

func TestService_Delete(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("DeleteUser", mock.Anything, int64(1)).Return(nil).Once()
	svc := newService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), alice, 1))
	assert.ErrorIs(t, svc.Delete(context.Background(), bob, 1), policy.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, 1), policy.ErrForbidden)
	repo.AssertExpectations(t)
}

// Удаление пользователя сбрасывает карточки курсов, где он был владельцем курса или урока.
func TestService_DeleteInvalidatesCourseCards(t *testing.T) {
	t.Run("cards of participant courses are dropped", func(t *testing.T) {
		repo := new(UserRepoMock)
		cards := new(CardCacheMock)
		listed := false
		repo.On("ListCourseIDsByParticipant", mock.Anything, int64(1)).
			Run(func(mock.Arguments) { listed = true }).
			Return([]int64{10, 11}, nil).Once()
		repo.On("DeleteUser", mock.Anything, int64(1)).
			Run(func(mock.Arguments) { assert.True(t, listed, "courses must be collected before owners are cleared") }).
			Return(nil).Once()
		cards.On("Invalidate", mock.Anything, []string{cache.CourseKey(10), cache.CourseKey(11)}).Return(nil).Once()

		svc := users.NewService(repo, nil, cards, policy.NewEngine(), newNoopLogger())
		require.NoError(t, svc.Delete(context.Background(), alice, 1))
		repo.AssertExpectations(t)
		cards.AssertExpectations(t)
	})

	t.Run("cache failure does not fail deletion", func(t *testing.T) {
		repo := new(UserRepoMock)
		cards := new(CardCacheMock)
		repo.On("ListCourseIDsByParticipant", mock.Anything, int64(1)).Return([]int64{10}, nil).Once()
		repo.On("DeleteUser", mock.Anything, int64(1)).Return(nil).Once()
		cards.On("Invalidate", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

		svc := users.NewService(repo, nil, cards, policy.NewEngine(), newNoopLogger())
		assert.NoError(t, svc.Delete(context.Background(), alice, 1))
	})

	t.Run("failed deletion keeps cards", func(t *testing.T) {
		repo := new(UserRepoMock)
		cards := new(CardCacheMock)
		repo.On("ListCourseIDsByParticipant", mock.Anything, int64(1)).Return([]int64{10}, nil).Once()
		repo.On("DeleteUser", mock.Anything, int64(1)).Return(storage.ErrNotFound).Once()

		svc := users.NewService(repo, nil, cards, policy.NewEngine(), newNoopLogger())
		assert.ErrorIs(t, svc.Delete(context.Background(), alice, 1), storage.ErrNotFound)
		cards.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})
}

func TestService_List(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("ListUsers", mock.Anything, 2, 2).
		Return([]models.User{{ID: 3, Email: "c@example.com", Phone: strPtr("secret")}}, 3, nil).Once()
	svc := newService(repo, nil)

	page, err := svc.List(context.Background(), admin, models.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "c@example.com", page.Results[0].Email)

	_, err = svc.List(context.Background(), alice, models.Page{})
	assert.ErrorIs(t, err, policy.ErrForbidden)
	repo.AssertExpectations(t)
}

func TestService_SetModerator(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("SetModerator", mock.Anything, int64(2), true).Return(nil).Once()
	repo.On("SetModerator", mock.Anything, int64(404), false).Return(storage.ErrNotFound).Once()
	svc := newService(repo, nil)

	require.NoError(t, svc.SetModerator(context.Background(), admin, 2, true))
	assert.ErrorIs(t, svc.SetModerator(context.Background(), admin, 404, false), storage.ErrNotFound)
	assert.ErrorIs(t, svc.SetModerator(context.Background(), alice, 2, true), policy.ErrForbidden)
	repo.AssertExpectations(t)
}

func TestService_DeactivateInactive(t *testing.T) {
	now := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)
	period := 30 * 24 * time.Hour

	repo := new(UserRepoMock)
	repo.On("DeactivateInactive", mock.Anything, now.Add(-period)).Return(int64(4), nil).Once()
	svc := newService(repo, nil)

	n, err := svc.DeactivateInactive(context.Background(), now, period)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	repo.On("DeactivateInactive", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down")).Once()
	_, err = svc.DeactivateInactive(context.Background(), now, period)
	assert.Error(t, err)
	repo.AssertExpectations(t)
}
