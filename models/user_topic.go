package models

import (
	"time"

	"github.com/google/uuid"
)

// Chủ đề user quan tâm. Onboarding luôn thay toàn bộ danh sách
// (xóa hết rồi insert mới), không merge với dữ liệu cũ.
type UserTopic struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Topic     string    `gorm:"size:100;not null" json:"topic"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
