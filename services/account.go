package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onmax/lingai/models"
)

// userBlobKeys gom toàn bộ blob key (audio, ảnh, recap, markdown bài học)
// còn lưu trong DB của 1 user. URL trong DB có dạng /api/<prefix>/<key>.
func userBlobKeys(db *gorm.DB, userID uuid.UUID) ([]string, error) {
	var keys []string

	var lessons []models.Lesson
	if err := db.Where("user_id = ?", userID).Find(&lessons).Error; err != nil {
		return nil, err
	}
	for _, l := range lessons {
		if l.ContentKey != "" {
			keys = append(keys, l.ContentKey)
		}
		if k := strings.TrimPrefix(l.ComicImageURL, "/api/images/"); l.ComicImageURL != "" && k != l.ComicImageURL {
			keys = append(keys, k)
		}
		if k := strings.TrimPrefix(l.RecapMarkdownURL, "/api/recap/"); l.RecapMarkdownURL != "" && k != l.RecapMarkdownURL {
			keys = append(keys, k)
		}
	}

	var sentences []models.Sentence
	if err := db.Where("user_id = ? AND audio_generated = ?", userID, true).Find(&sentences).Error; err != nil {
		return nil, err
	}
	for _, s := range sentences {
		if k := strings.TrimPrefix(s.AudioURL, "/api/audio/"); s.AudioURL != "" && k != s.AudioURL {
			keys = append(keys, k)
		}
	}

	return keys, nil
}

// DeleteUserAccount xóa toàn bộ dữ liệu của user: blob trên storage trước
// (best effort, blob mồ côi không chặn việc xóa tài khoản), sau đó mọi bản ghi
// trong 1 transaction.
func DeleteUserAccount(db *gorm.DB, userID uuid.UUID) error {
	keys, err := userBlobKeys(db, userID)
	if err != nil {
		return fmt.Errorf("liệt kê blob của user thất bại: %w", err)
	}
	for _, key := range keys {
		if err := DeleteBytes(key); err != nil {
			log.Printf("Không xóa được blob %s: %v", key, err)
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.GenerationJob{},
			&models.SentenceProgress{},
			&models.Sentence{},
			&models.Lesson{},
			&models.UserTopic{},
			&models.UserProfile{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", userID).Delete(&models.User{}).Error
	})
}
