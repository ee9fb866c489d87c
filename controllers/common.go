package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUserID lấy user_id từ context (do AuthMiddleware set) và parse sang UUID
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, errors.New("thiếu user_id trong context")
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, errors.New("user_id không hợp lệ")
	}
	return uuid.Parse(s)
}
