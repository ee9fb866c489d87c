package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/onmax/lingai/models"
	"github.com/onmax/lingai/services"
)

type UpdateProfileInput struct {
	TargetLanguage string `json:"target_language"`
	UserLanguage   string `json:"user_language"`
}

// GetProfile trả về hồ sơ học tập của user
func GetProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var profile models.UserProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chưa có hồ sơ, hãy hoàn thành onboarding"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "topics": userTopics(db, userID)})
}

// UpdateProfile upsert ngôn ngữ học của user
func UpdateProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.TargetLanguage == "" && input.UserLanguage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không có gì để cập nhật"})
		return
	}

	profile := models.UserProfile{UserID: userID}
	updates := map[string]interface{}{}
	if input.TargetLanguage != "" {
		profile.TargetLanguage = input.TargetLanguage
		updates["target_language"] = input.TargetLanguage
	}
	if input.UserLanguage != "" {
		profile.UserLanguage = input.UserLanguage
		updates["user_language"] = input.UserLanguage
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không cập nhật được hồ sơ", "details": err.Error()})
		return
	}

	db.Where("user_id = ?", userID).First(&profile)
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

// DeleteAccount xóa tài khoản cùng toàn bộ bài học, tiến độ và blob đã sinh
func DeleteAccount(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	if err := services.DeleteUserAccount(db, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không xóa được tài khoản", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
