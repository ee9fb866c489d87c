package models

import (
	"time"

	"github.com/google/uuid"
)

// Tiến độ luyện tập 1 câu của 1 user. Tạo lần đầu khi user luyện câu đó.
type SentenceProgress struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_sentence" json:"user_id"`
	SentenceID uint      `gorm:"not null;uniqueIndex:idx_user_sentence" json:"sentence_id"`
	LessonID   uint      `gorm:"not null;index" json:"lesson_id"`

	Completed       bool       `gorm:"default:false" json:"completed"`
	PracticeCount   int        `gorm:"default:0" json:"practice_count"`
	LastPracticedAt *time.Time `json:"last_practiced_at,omitempty"`
	MasteryLevel    int        `gorm:"default:0" json:"mastery_level"` // 0..5

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Sentence Sentence `gorm:"foreignKey:SentenceID;constraint:OnDelete:CASCADE" json:"-"`
}

// MaxMasteryLevel là trần của mastery_level.
const MaxMasteryLevel = 5
