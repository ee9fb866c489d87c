package models

import (
	"time"

	"github.com/google/uuid"
)

// Hồ sơ học tập của user (mỗi user đúng 1 dòng)
type UserProfile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	TargetLanguage string    `gorm:"size:50;not null;default:'spanish'" json:"target_language"`
	UserLanguage   string    `gorm:"size:50;not null;default:'english'" json:"user_language"`
	LastLessonID   *uint     `json:"last_lesson_id,omitempty"` // bài học xem gần nhất
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
