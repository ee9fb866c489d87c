package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/onmax/lingai/models"
	"github.com/onmax/lingai/services"
)

type OnboardingInput struct {
	Topics         []string `json:"topics" binding:"required,min=1"`
	TargetLanguage string   `json:"target_language" binding:"required"`
	UserLanguage   string   `json:"user_language"`
}

// CompleteOnboarding lưu topics + ngôn ngữ học của user rồi tạo bài học đầu tiên.
// Tạo bài học là best effort: lỗi sinh bài không làm hỏng onboarding.
func CompleteOnboarding(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var input OnboardingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.UserLanguage == "" {
		input.UserLanguage = "english"
	}

	// Thay toàn bộ topics cũ bằng bộ mới (xóa hết rồi insert lại)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserTopic{}).Error; err != nil {
			return err
		}
		for _, topic := range input.Topics {
			if err := tx.Create(&models.UserTopic{UserID: userID, Topic: topic}).Error; err != nil {
				return err
			}
		}

		// Upsert profile với ngôn ngữ học
		profile := models.UserProfile{
			UserID:         userID,
			TargetLanguage: input.TargetLanguage,
			UserLanguage:   input.UserLanguage,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"target_language", "user_language"}),
		}).Create(&profile).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được thông tin onboarding", "details": err.Error()})
		return
	}

	response := gin.H{
		"success":         true,
		"topics":          input.Topics,
		"target_language": input.TargetLanguage,
	}

	// Sinh bài học đầu tiên ngay để user có gì đó để học
	result, err := services.GenerateLesson(db, userID, input.Topics, input.TargetLanguage, input.UserLanguage)
	if err != nil {
		log.Printf("Không tạo được bài học đầu tiên cho user %s: %v", userID, err)
		response["first_lesson_created"] = false
	} else {
		response["first_lesson_created"] = true
		response["lesson"] = result.Lesson
	}

	c.JSON(http.StatusOK, response)
}

// GetOnboardingStatus trả về topics + profile hiện tại của user
func GetOnboardingStatus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var topics []models.UserTopic
	if err := db.Where("user_id = ?", userID).Find(&topics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được topics", "details": err.Error()})
		return
	}

	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Topic)
	}

	var profile models.UserProfile
	hasProfile := db.Where("user_id = ?", userID).First(&profile).Error == nil

	c.JSON(http.StatusOK, gin.H{
		"completed":       hasProfile && len(names) > 0,
		"topics":          names,
		"target_language": profile.TargetLanguage,
		"user_language":   profile.UserLanguage,
	})
}
