package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/onmax/lingai/services"
)

// Nội dung blob bất biến (key mới cho nội dung mới) nên cache 1 năm
const blobCacheControl = "public, max-age=31536000, immutable"

// streamBlob tải blob từ Supabase và stream về client với content type cho trước.
// Key trên URL là wildcard (*path) và đã chứa prefix (audio/, images/, ...),
// chỉ cần kiểm tra đúng prefix để không cho đọc chéo loại nội dung.
func streamBlob(c *gin.Context, prefix, contentType string) {
	key := strings.TrimPrefix(c.Param("path"), "/")
	if key == "" || strings.Contains(key, "..") || !strings.HasPrefix(key, prefix+"/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Đường dẫn không hợp lệ"})
		return
	}

	data, err := services.DownloadBytes(key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy file"})
		return
	}

	c.Header("Cache-Control", blobCacheControl)
	c.Data(http.StatusOK, contentType, data)
}

// StreamAudio phục vụ file mp3 của câu: GET /api/audio/audio/sentences/{id}.mp3
func StreamAudio(c *gin.Context) {
	streamBlob(c, "audio", "audio/mpeg")
}

// StreamImage phục vụ ảnh minh họa bài học
func StreamImage(c *gin.Context) {
	streamBlob(c, "images", "image/png")
}

// StreamRecap phục vụ markdown ôn tập
func StreamRecap(c *gin.Context) {
	streamBlob(c, "recap", "text/markdown; charset=utf-8")
}

// StreamLessonContent phục vụ envelope markdown thô của bài học
func StreamLessonContent(c *gin.Context) {
	streamBlob(c, "lessons", "text/markdown; charset=utf-8")
}
