package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/natalia-epifanova/course-marketplace/internal/migrations"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя со случайным email
func (f *TestDataFactory) CreateUser(t *testing.T, moderator bool) int64 {
	t.Helper()
	id, err := f.storage.CreateUser(context.Background(), models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hashedpassword",
		IsModerator:  moderator,
		IsActive:     true,
	})
	require.NoError(t, err)
	return id
}

// CreateCourse создает тестовый курс
func (f *TestDataFactory) CreateCourse(t *testing.T, ownerID int64, name string) *models.Course {
	t.Helper()
	c, err := f.storage.CreateCourse(context.Background(), models.Course{
		Name:       name,
		OwnerID:    &ownerID,
		LastUpdate: time.Now().UTC(),
	})
	require.NoError(t, err)
	return c
}

// CreateLesson создает тестовый урок в курсе
func (f *TestDataFactory) CreateLesson(t *testing.T, ownerID, courseID int64, name string) *models.Lesson {
	t.Helper()
	link := "https://youtube.com/watch?v=" + name
	l, err := f.storage.CreateLesson(context.Background(), models.Lesson{
		Name:      name,
		VideoLink: &link,
		CourseID:  courseID,
		OwnerID:   &ownerID,
	})
	require.NoError(t, err)
	return l
}

// CreatePayment создает тестовый платеж за курс
func (f *TestDataFactory) CreatePayment(t *testing.T, userID, courseID int64, amount string,
	method models.PaymentMethod, date time.Time) *models.Payment {
	t.Helper()
	session := "cs_" + uuid.NewString()
	p, err := f.storage.CreatePayment(context.Background(), models.Payment{
		UserID:       userID,
		PaymentDate:  date,
		PaidCourseID: &courseID,
		Amount:       decimal.RequireFromString(amount),
		Method:       method,
		Status:       models.PaymentStatusPending,
		SessionID:    &session,
	})
	require.NoError(t, err)
	return p
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// CountRows возвращает число строк в таблице по условию
func (v *TestVerification) CountRows(t *testing.T, table, where string, args ...any) int {
	t.Helper()
	var count int
	err := v.storage.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, where), args...).Scan(&count)
	require.NoError(t, err)
	return count
}

// setupTestDatabase поднимает контейнер PostgreSQL и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pgPort := nat.Port("5432/tcp")

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(pgPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(pgPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, pgPort)
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		storage.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}
