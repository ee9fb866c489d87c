package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onmax/lingai/services"
)

// RetryComicImage tạo job nền sinh lại ảnh minh họa cho các lesson chưa có ảnh
func RetryComicImage(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var input RetryInput
	_ = c.ShouldBindJSON(&input)

	if err := services.RetryFailedComicImages(db, userID, input.LessonID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không tạo được job sinh lại ảnh", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Đã tạo job sinh lại ảnh minh họa"})
}
