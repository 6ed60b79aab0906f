package models

import "time"

// Lesson урок, принадлежащий ровно одному курсу.
type Lesson struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Preview     *string   `json:"preview,omitempty"`
	VideoLink   *string   `json:"video_link,omitempty"`
	CourseID    int64     `json:"course"`
	OwnerID     *int64    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
}

// LessonInput данные для создания урока.
type LessonInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty"`
	Preview     *string `json:"preview,omitempty" validate:"omitempty,max=255"`
	VideoLink   *string `json:"video_link,omitempty" validate:"omitempty,max=100,videohost"`
	CourseID    int64   `json:"course" validate:"required,gt=0"`
}

// LessonPatch частичное обновление урока.
type LessonPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	Preview     *string `json:"preview,omitempty" validate:"omitempty,max=255"`
	VideoLink   *string `json:"video_link,omitempty" validate:"omitempty,max=100,videohost"`
	CourseID    *int64  `json:"course,omitempty" validate:"omitempty,gt=0"`
}
