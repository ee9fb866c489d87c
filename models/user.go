package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"size:150;not null" json:"full_name"`
	Email     string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text" json:"-"` // rỗng nếu đăng nhập bằng Google
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Quan hệ
	Profile UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Topics  []UserTopic `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Lessons []Lesson    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
