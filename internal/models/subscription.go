package models

import "time"

// Subscription связь пользователь-курс, не более одной на пару.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	CourseID  int64     `json:"course"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleRequest тело запроса переключения подписки.
type ToggleRequest struct {
	CourseID int64 `json:"course_id"`
}

// ToggleResult итог переключения подписки.
type ToggleResult string

const (
	SubscriptionAdded   ToggleResult = "added"
	SubscriptionRemoved ToggleResult = "removed"
)

// CourseUpdatedJob задание на рассылку уведомлений об обновлении курса.
type CourseUpdatedJob struct {
	CourseID  int64     `json:"course_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
