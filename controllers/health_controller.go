package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onmax/lingai/ws"
)

// HealthCheck kiểm tra DB còn sống và trả thống kê websocket
func HealthCheck(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}

	lessons, connections := ws.H.GetStats()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"websocket": gin.H{
			"lessons":     lessons,
			"connections": connections,
		},
	})
}
