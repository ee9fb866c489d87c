package models

import (
	"time"

	"github.com/google/uuid"
)

// Một câu trong bài học. Thuộc về đúng 1 lesson, xóa lesson thì xóa theo.
type Sentence struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	LessonID uint      `gorm:"not null;index" json:"lesson_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	TargetText    string `gorm:"type:text;not null" json:"target_text"`
	UserText      string `gorm:"type:text;not null" json:"user_text"`
	SentenceOrder int    `gorm:"not null" json:"sentence_order"`

	// Audio sinh bất đồng bộ: audio_generated=true kéo theo audio_url khác rỗng.
	// Lần sinh thất bại giữ audio_generated=false để retry được.
	AudioURL       string `gorm:"type:text" json:"audio_url,omitempty"`
	AudioGenerated bool   `gorm:"default:false" json:"audio_generated"`

	Context    string `gorm:"type:text" json:"context,omitempty"`
	Difficulty string `gorm:"size:20" json:"difficulty,omitempty"`
	Tags       string `gorm:"type:text" json:"-"` // mảng JSON

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
