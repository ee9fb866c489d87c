package models

import (
	"time"

	"github.com/google/uuid"
)

// Một bài học của user trong một ngôn ngữ đích.
// lesson_number tăng dần và duy nhất trong phạm vi (user_id, target_language).
type Lesson struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_lang_number" json:"user_id"`
	TargetLanguage string    `gorm:"size:50;not null;uniqueIndex:idx_user_lang_number" json:"target_language"`
	LessonNumber   int       `gorm:"not null;uniqueIndex:idx_user_lang_number" json:"lesson_number"`
	UserLanguage   string    `gorm:"size:50;not null;default:'english'" json:"user_language"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Difficulty  string `gorm:"size:20;default:'beginner'" json:"difficulty"` // beginner | intermediate | advanced
	Topics      string `gorm:"type:text" json:"-"`                           // mảng JSON, parse khi trả về

	TotalSentences int    `gorm:"default:0" json:"total_sentences"`
	ContentKey     string `gorm:"type:text" json:"content_key"` // blob key của markdown bài học

	// Ảnh minh họa kiểu truyện tranh (sinh bất đồng bộ)
	ComicImageURL       string `gorm:"type:text" json:"comic_image_url,omitempty"`
	ComicImageGenerated bool   `gorm:"default:false" json:"comic_image_generated"`

	// Bài ôn tập (mỗi bài thứ 7)
	IsRecapLesson    bool   `gorm:"default:false" json:"is_recap_lesson"`
	RecapMarkdownURL string `gorm:"type:text" json:"recap_markdown_url,omitempty"`
	RecapGenerated   bool   `gorm:"default:false" json:"recap_generated"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Sentences []Sentence `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"sentences,omitempty"`
}
