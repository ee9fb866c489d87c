package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onmax/lingai/services"
)

// GenerateAudio sinh audio đồng bộ cho các câu chưa có audio của 1 bài học.
// Gọi lại khi đã đủ audio trả về {generated: 0, total: 0}.
func GenerateAudio(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	lessonID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID bài học không hợp lệ"})
		return
	}

	generated, total, err := services.RunAudioGeneration(db, uint(lessonID), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sinh audio thất bại", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"generated": generated,
		"total":     total,
	})
}

type RetryInput struct {
	LessonID *uint `json:"lesson_id"`
}

// RetryAudio tạo job nền chạy lại audio cho các câu còn thiếu.
// Không truyền lesson_id thì retry toàn bộ lesson của user.
func RetryAudio(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var input RetryInput
	_ = c.ShouldBindJSON(&input)

	if err := services.RetryFailedAudio(db, userID, input.LessonID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không tạo được job retry audio", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Đã tạo job sinh lại audio"})
}
