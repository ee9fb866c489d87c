package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onmax/lingai/models"
	"github.com/onmax/lingai/services"
)

type GenerateLessonInput struct {
	Topics         []string `json:"topics"`
	TargetLanguage string   `json:"target_language"`
}

// lessonJSON trả lesson kèm topics đã parse từ cột JSON
func lessonJSON(lesson *models.Lesson) gin.H {
	var topics []string
	if err := json.Unmarshal([]byte(lesson.Topics), &topics); err != nil {
		topics = []string{}
	}
	return gin.H{"lesson": lesson, "topics": topics}
}

// sentenceJSON trả sentence kèm tags đã parse
func sentenceJSON(s *models.Sentence) gin.H {
	var tags []string
	if err := json.Unmarshal([]byte(s.Tags), &tags); err != nil {
		tags = []string{}
	}
	return gin.H{"sentence": s, "tags": tags}
}

// userTopics lấy topics đã lưu của user, rỗng thì controller tự fallback
func userTopics(db *gorm.DB, userID uuid.UUID) []string {
	var rows []models.UserTopic
	if err := db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil
	}
	topics := make([]string, 0, len(rows))
	for _, r := range rows {
		topics = append(topics, r.Topic)
	}
	return topics
}

// GenerateLesson tạo bài học tiếp theo. Topics/ngôn ngữ lấy từ body,
// không có thì dùng dữ liệu onboarding đã lưu.
func GenerateLesson(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var input GenerateLessonInput
	// Body trống vẫn hợp lệ
	_ = c.ShouldBindJSON(&input)

	var profile models.UserProfile
	db.Where("user_id = ?", userID).First(&profile)

	targetLanguage := input.TargetLanguage
	if targetLanguage == "" {
		targetLanguage = profile.TargetLanguage
	}
	userLanguage := profile.UserLanguage

	topics := input.Topics
	if len(topics) == 0 {
		topics = userTopics(db, userID)
	}

	result, err := services.GenerateLesson(db, userID, topics, targetLanguage, userLanguage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Tạo bài học thất bại", "details": err.Error()})
		return
	}

	response := gin.H{
		"success":   true,
		"lesson":    result.Lesson,
		"sentences": result.Sentences,
		"jobs":      result.Jobs,
	}
	if len(result.PartialErrors) > 0 {
		response["partial_errors"] = result.PartialErrors
	}
	c.JSON(http.StatusCreated, response)
}

// GenerateNextLesson tạo bài học kế tiếp trong cùng track với bài :id,
// dùng lại ngôn ngữ và topics của bài đó.
func GenerateNextLesson(c *gin.Context) {
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

	var lesson models.Lesson
	if err := db.First(&lesson, "id = ? AND user_id = ?", lessonID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được bài học", "details": err.Error()})
		return
	}

	var topics []string
	if err := json.Unmarshal([]byte(lesson.Topics), &topics); err != nil || len(topics) == 0 {
		topics = userTopics(db, userID)
	}

	result, err := services.GenerateLesson(db, userID, topics, lesson.TargetLanguage, lesson.UserLanguage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Tạo bài học thất bại", "details": err.Error()})
		return
	}

	response := gin.H{
		"success":   true,
		"lesson":    result.Lesson,
		"sentences": result.Sentences,
		"jobs":      result.Jobs,
	}
	if len(result.PartialErrors) > 0 {
		response["partial_errors"] = result.PartialErrors
	}
	c.JSON(http.StatusCreated, response)
}

// ListLessons liệt kê bài học của user theo ngôn ngữ đang học
func ListLessons(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	targetLanguage := c.Query("target_language")
	if targetLanguage == "" {
		var profile models.UserProfile
		db.Where("user_id = ?", userID).First(&profile)
		targetLanguage = profile.TargetLanguage
	}

	var lessons []models.Lesson
	query := db.Where("user_id = ?", userID).Order("lesson_number ASC")
	if targetLanguage != "" {
		query = query.Where("target_language = ?", targetLanguage)
	}
	if err := query.Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được danh sách bài học", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lessons": lessons, "total": len(lessons)})
}

// GetLesson trả về 1 bài học kèm các câu theo đúng thứ tự
func GetLesson(c *gin.Context) {
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

	var lesson models.Lesson
	if err := db.Preload("Sentences", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sentence_order ASC")
	}).First(&lesson, "id = ? AND user_id = ?", lessonID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được bài học", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lessonJSON(&lesson))
}

// GetLessonNavigation trả về bài trước / bài sau theo lesson_number trong cùng ngôn ngữ
func GetLessonNavigation(c *gin.Context) {
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

	var lesson models.Lesson
	if err := db.First(&lesson, "id = ? AND user_id = ?", lessonID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được bài học", "details": err.Error()})
		return
	}

	var prev, next models.Lesson
	hasPrev := db.Where("user_id = ? AND target_language = ? AND lesson_number < ?",
		userID, lesson.TargetLanguage, lesson.LessonNumber).
		Order("lesson_number DESC").First(&prev).Error == nil
	hasNext := db.Where("user_id = ? AND target_language = ? AND lesson_number > ?",
		userID, lesson.TargetLanguage, lesson.LessonNumber).
		Order("lesson_number ASC").First(&next).Error == nil

	response := gin.H{
		"current_lesson_id": lesson.ID,
		"lesson_number":     lesson.LessonNumber,
		"has_previous":      hasPrev,
		"has_next":          hasNext,
	}
	if hasPrev {
		response["previous_lesson_id"] = prev.ID
	}
	if hasNext {
		response["next_lesson_id"] = next.ID
	}
	c.JSON(http.StatusOK, response)
}

// ListLessonSentences trả về các câu của 1 bài học
func ListLessonSentences(c *gin.Context) {
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

	var count int64
	db.Model(&models.Lesson{}).Where("id = ? AND user_id = ?", lessonID, userID).Count(&count)
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài học"})
		return
	}

	var sentences []models.Sentence
	if err := db.Where("lesson_id = ?", lessonID).
		Order("sentence_order ASC").Find(&sentences).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được danh sách câu", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sentences": sentences, "total": len(sentences)})
}

// GetSentence trả về 1 câu theo id
func GetSentence(c *gin.Context) {
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
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy câu"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được câu", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sentenceJSON(&sentence))
}

// GetLessonContent tải envelope markdown của bài học từ blob và parse frontmatter
func GetLessonContent(c *gin.Context) {
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

	var lesson models.Lesson
	if err := db.First(&lesson, "id = ? AND user_id = ?", lessonID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được bài học", "details": err.Error()})
		return
	}

	if lesson.ContentKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bài học chưa có nội dung markdown"})
		return
	}

	data, err := services.DownloadBytes(lesson.ContentKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không tải được nội dung bài học", "details": err.Error()})
		return
	}

	frontmatter, body, err := services.ParseLessonEnvelope(string(data))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Nội dung bài học không hợp lệ", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"frontmatter": frontmatter,
		"markdown":    body,
	})
}
