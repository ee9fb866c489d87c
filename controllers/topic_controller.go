package controllers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// Danh sách topic cho màn onboarding. Giữ tĩnh, không cần bảng riêng.
var availableTopics = []string{
	"travel", "food", "family", "work", "hobbies",
	"shopping", "health", "sports", "music", "movies",
	"technology", "nature", "weather", "culture", "history",
	"education", "business", "art", "science", "cooking",
	"fashion", "animals", "transportation", "home", "relationships",
}

// ListTopics trả về các topic có thể chọn, sắp theo alphabet
func ListTopics(c *gin.Context) {
	topics := make([]string, len(availableTopics))
	copy(topics, availableTopics)
	sort.Strings(topics)

	c.JSON(http.StatusOK, gin.H{"topics": topics, "total": len(topics)})
}

// Các ngôn ngữ đích đang hỗ trợ (khớp với bảng mã TTS)
var supportedLanguages = []gin.H{
	{"code": "spanish", "name": "Spanish"},
	{"code": "english", "name": "English"},
	{"code": "french", "name": "French"},
	{"code": "german", "name": "German"},
	{"code": "italian", "name": "Italian"},
	{"code": "portuguese", "name": "Portuguese"},
	{"code": "japanese", "name": "Japanese"},
	{"code": "korean", "name": "Korean"},
	{"code": "chinese", "name": "Chinese"},
	{"code": "vietnamese", "name": "Vietnamese"},
}

// ListLanguages trả về các ngôn ngữ học được
func ListLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": supportedLanguages, "total": len(supportedLanguages)})
}
