package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/onmax/lingai/models"
)

type ProgressItemInput struct {
	SentenceID uint `json:"sentence_id" binding:"required"`
	Completed  bool `json:"completed"`
}

type UpdateProgressInput struct {
	Items []ProgressItemInput `json:"items" binding:"required,min=1"`
}

type LastLessonInput struct {
	LastLessonID uint `json:"last_lesson_id" binding:"required"`
}

// GetProgress trả về bài học xem gần nhất của user
func GetProgress(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var profile models.UserProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"progress": gin.H{"last_lesson_id": nil}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": gin.H{"last_lesson_id": profile.LastLessonID}})
}

// UpdateProgress lưu bài học user vừa xem
func UpdateProgress(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var input LastLessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Bài học phải tồn tại và thuộc về user
	var count int64
	db.Model(&models.Lesson{}).Where("id = ? AND user_id = ?", input.LastLessonID, userID).Count(&count)
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài học"})
		return
	}

	profile := models.UserProfile{UserID: userID, LastLessonID: &input.LastLessonID}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_lesson_id", "updated_at"}),
	}).Create(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tiến độ", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": gin.H{"last_lesson_id": input.LastLessonID}})
}

// GetSentenceProgress trả về tiến độ luyện tập theo câu, lọc theo lesson_id nếu có
func GetSentenceProgress(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	query := db.Where("user_id = ?", userID)
	if raw := c.Query("lesson_id"); raw != "" {
		lessonID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lesson_id không hợp lệ"})
			return
		}
		query = query.Where("lesson_id = ?", lessonID)
	}

	var progress []models.SentenceProgress
	if err := query.Find(&progress).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được tiến độ", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress, "total": len(progress)})
}

// UpdateSentenceProgress upsert tiến độ theo từng câu (unique theo user + sentence)
func UpdateSentenceProgress(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var input UpdateProgressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated := 0
	for _, item := range input.Items {
		var sentence models.Sentence
		if err := db.First(&sentence, "id = ? AND user_id = ?", item.SentenceID, userID).Error; err != nil {
			// Câu không tồn tại hoặc của người khác thì bỏ qua
			continue
		}

		progress := models.SentenceProgress{
			UserID:     userID,
			SentenceID: sentence.ID,
			LessonID:   sentence.LessonID,
			Completed:  item.Completed,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "sentence_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
		}).Create(&progress).Error; err != nil {
			continue
		}
		updated++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"updated": updated,
		"total":   len(input.Items),
	})
}

// PracticeSentence ghi nhận 1 lần luyện câu: tăng practice_count và mastery_level (trần 5)
func PracticeSentence(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	sentenceID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID câu không hợp lệ"})
		return
	}

	var sentence models.Sentence
	if err := db.First(&sentence, "id = ? AND user_id = ?", sentenceID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy câu"})
		return
	}

	now := time.Now()
	var progress models.SentenceProgress
	err = db.Where("user_id = ? AND sentence_id = ?", userID, sentence.ID).First(&progress).Error
	if err != nil {
		progress = models.SentenceProgress{
			UserID:          userID,
			SentenceID:      sentence.ID,
			LessonID:        sentence.LessonID,
			PracticeCount:   1,
			MasteryLevel:    1,
			LastPracticedAt: &now,
		}
		if err := db.Create(&progress).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tiến độ", "details": err.Error()})
			return
		}
	} else {
		progress.PracticeCount++
		if progress.MasteryLevel < models.MaxMasteryLevel {
			progress.MasteryLevel++
		}
		progress.LastPracticedAt = &now
		if err := db.Save(&progress).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tiến độ", "details": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "progress": progress})
}
