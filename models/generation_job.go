package models

import (
	"time"

	"github.com/google/uuid"
)

type JobKind string

const (
	JobKindAudio      JobKind = "audio"
	JobKindComicImage JobKind = "comic_image"
	JobKindRecap      JobKind = "recap"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Bản ghi job sinh nội dung chạy nền (audio / ảnh / recap).
// Client tra trạng thái qua GET /api/jobs/:id thay vì đoán mò.
type GenerationJob struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	LessonID uint      `gorm:"not null;index" json:"lesson_id"`

	Kind   JobKind   `gorm:"size:20;not null" json:"kind"`
	Status JobStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Error  string    `gorm:"type:text" json:"error,omitempty"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
