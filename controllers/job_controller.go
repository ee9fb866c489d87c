package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onmax/lingai/models"
)

// GetJob trả về trạng thái 1 job sinh nội dung chạy nền
func GetJob(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID job không hợp lệ"})
		return
	}

	var job models.GenerationJob
	if err := db.First(&job, "id = ? AND user_id = ?", jobID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy job"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được job", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job})
}

// ListLessonJobs liệt kê các job của 1 bài học, mới nhất trước
func ListLessonJobs(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var jobs []models.GenerationJob
	if err := db.Where("user_id = ? AND lesson_id = ?", userID, c.Param("id")).
		Order("created_at DESC").Find(&jobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được danh sách job", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": len(jobs)})
}
