package models

import "time"

// Course курс. OwnerID равен nil, если владелец удален.
type Course struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Preview     *string   `json:"preview,omitempty"`
	OwnerID     *int64    `json:"owner"`
	LastUpdate  time.Time `json:"last_update"`
	CreatedAt   time.Time `json:"created_at"`
}

// CourseDetail курс вместе со списком уроков.
type CourseDetail struct {
	Course
	LessonsCount int      `json:"lessons_count"`
	Lessons      []Lesson `json:"lessons"`
}

// CourseInput данные для создания курса.
type CourseInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty"`
	Preview     *string `json:"preview,omitempty" validate:"omitempty,max=255"`
}

// CoursePatch частичное обновление курса.
type CoursePatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	Preview     *string `json:"preview,omitempty" validate:"omitempty,max=255"`
}
