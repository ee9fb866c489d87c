package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/onmax/lingai/models"
)

// Bộ topic mặc định khi user chưa chọn gì
var DefaultTopics = []string{"travel", "food", "family", "work", "hobbies"}

// Số câu mỗi bài học thường
const SentencesPerLesson = 5

// Khoảng nghỉ giữa 2 request TTS liên tiếp (tránh rate limit).
// Là biến để test chạy nhanh.
var audioRequestDelay = 500 * time.Millisecond

type generatedSentence struct {
	TargetText string   `json:"target_text"`
	UserText   string   `json:"user_text"`
	Context    string   `json:"context"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
}

type generatedLesson struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Difficulty  string              `json:"difficulty"`
	Sentences   []generatedSentence `json:"sentences"`
}

func buildLessonPrompt(topics []string, targetLanguage, userLanguage string) string {
	return fmt.Sprintf(`You are a %s language teacher creating a short lesson for a %s speaker.
The lesson focuses on the topics: %s.

Create exactly %d sentence pairs. Each pair has the %s sentence and its %s translation.
Every sentence must be at most 12 words, practical and realistic — something a learner
would actually say. Difficulty: beginner to intermediate.

Return only valid JSON with exactly this structure, no other text:
{
  "title": "A short descriptive title in %s",
  "description": "One sentence in %s describing the lesson",
  "difficulty": "beginner|intermediate",
  "sentences": [
    {
      "target_text": "sentence in %s",
      "user_text": "translation in %s",
      "context": "when you would say this",
      "difficulty": "beginner|intermediate",
      "tags": ["topic tags"]
    }
  ]
}`,
		targetLanguage, userLanguage, strings.Join(topics, ", "),
		SentencesPerLesson, targetLanguage, userLanguage,
		targetLanguage, userLanguage, targetLanguage, userLanguage)
}

// cleanGeminiJSON bỏ code fence ```json ... ``` mà Gemini hay bọc quanh kết quả
func cleanGeminiJSON(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "`")
	clean = strings.TrimPrefix(clean, "json")
	return strings.TrimSpace(clean)
}

// parseLessonResponse parse và kiểm tra JSON Gemini trả về
func parseLessonResponse(raw string) (*generatedLesson, error) {
	var parsed generatedLesson
	if err := json.Unmarshal([]byte(cleanGeminiJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("không parse được JSON từ Gemini: %w", err)
	}

	if parsed.Title == "" {
		return nil, fmt.Errorf("gemini trả về lesson không có title")
	}
	if len(parsed.Sentences) == 0 {
		return nil, fmt.Errorf("gemini trả về lesson không có câu nào")
	}
	for i, s := range parsed.Sentences {
		if strings.TrimSpace(s.TargetText) == "" || strings.TrimSpace(s.UserText) == "" {
			return nil, fmt.Errorf("câu thứ %d thiếu nội dung", i+1)
		}
	}
	if parsed.Difficulty == "" {
		parsed.Difficulty = "beginner"
	}
	return &parsed, nil
}

// NextLessonNumber = max(lesson_number của user+language) + 1, bắt đầu từ 1
func NextLessonNumber(db *gorm.DB, userID uuid.UUID, targetLanguage string) (int, error) {
	var maxNumber int
	err := db.Model(&models.Lesson{}).
		Where("user_id = ? AND target_language = ?", userID, targetLanguage).
		Select("COALESCE(MAX(lesson_number), 0)").
		Scan(&maxNumber).Error
	if err != nil {
		return 0, err
	}
	return maxNumber + 1, nil
}

// LessonResult là kết quả tạo bài học, kèm cờ partial cho các job nền
type LessonResult struct {
	Lesson    *models.Lesson
	Sentences []models.Sentence
	// Job nền đã được tạo (audio, ảnh, recap). Lỗi khi tạo job không làm
	// request thất bại, chỉ ghi vào PartialErrors.
	Jobs          []*models.GenerationJob
	PartialErrors []string
}

// GenerateLesson tạo bài học tiếp theo cho user:
// bài thường gọi Gemini sinh 5 cặp câu, bài thứ 7 rẽ sang nhánh recap.
// Lesson luôn được insert trước, sau đó mới đến các Sentence.
func GenerateLesson(db *gorm.DB, userID uuid.UUID, topics []string, targetLanguage, userLanguage string) (*LessonResult, error) {
	if len(topics) == 0 {
		topics = DefaultTopics
	}
	if targetLanguage == "" {
		targetLanguage = "spanish"
	}
	if userLanguage == "" {
		userLanguage = "english"
	}

	number, err := NextLessonNumber(db, userID, targetLanguage)
	if err != nil {
		return nil, err
	}

	if IsRecapLesson(number) {
		return generateRecapLesson(db, userID, number, targetLanguage, userLanguage)
	}
	return generateRegularLesson(db, userID, number, topics, targetLanguage, userLanguage)
}

func generateRegularLesson(db *gorm.DB, userID uuid.UUID, number int, topics []string, targetLanguage, userLanguage string) (*LessonResult, error) {
	raw, err := GeminiGenerateText(buildLessonPrompt(topics, targetLanguage, userLanguage))
	if err != nil {
		return nil, fmt.Errorf("gọi Gemini thất bại: %w", err)
	}

	parsed, err := parseLessonResponse(raw)
	if err != nil {
		return nil, err
	}

	topicsJSON, _ := json.Marshal(topics)

	lesson := models.Lesson{
		UserID:         userID,
		TargetLanguage: targetLanguage,
		UserLanguage:   userLanguage,
		LessonNumber:   number,
		Title:          parsed.Title,
		Description:    parsed.Description,
		Difficulty:     parsed.Difficulty,
		Topics:         string(topicsJSON),
	}

	var sentences []models.Sentence

	// Lesson insert trước, Sentence sau, cả hai trong 1 transaction
	// để không bao giờ có lesson thiếu câu.
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lesson).Error; err != nil {
			return err
		}

		for i, g := range parsed.Sentences {
			tagsJSON, _ := json.Marshal(g.Tags)
			s := models.Sentence{
				LessonID:      lesson.ID,
				UserID:        userID,
				TargetText:    strings.TrimSpace(g.TargetText),
				UserText:      strings.TrimSpace(g.UserText),
				SentenceOrder: i + 1,
				Context:       g.Context,
				Difficulty:    g.Difficulty,
				Tags:          string(tagsJSON),
			}
			if err := tx.Create(&s).Error; err != nil {
				return err
			}
			sentences = append(sentences, s)
		}

		lesson.TotalSentences = len(sentences)
		return tx.Model(&lesson).Update("total_sentences", lesson.TotalSentences).Error
	})
	if err != nil {
		return nil, fmt.Errorf("lưu lesson thất bại: %w", err)
	}

	result := &LessonResult{Lesson: &lesson, Sentences: sentences}

	// Lưu envelope markdown lên blob (best effort)
	if envelope, err := BuildLessonEnvelope(&lesson, topics, sentences); err == nil {
		key := fmt.Sprintf("lessons/%s/%s/%02d.%s.md", userID, targetLanguage, number, slug.Make(parsed.Title))
		if _, err := UploadBytes([]byte(envelope), key, "text/markdown"); err != nil {
			log.Printf("Không lưu được lesson markdown %s: %v", key, err)
			result.PartialErrors = append(result.PartialErrors, "lesson markdown not stored")
		} else {
			db.Model(&lesson).Update("content_key", key)
			lesson.ContentKey = key
		}
	}

	// Audio + ảnh chạy nền, thất bại không làm hỏng response
	if job, err := StartJob(db, userID, lesson.ID, models.JobKindAudio, func() error {
		_, _, err := RunAudioGeneration(db, lesson.ID, userID)
		return err
	}); err != nil {
		result.PartialErrors = append(result.PartialErrors, "audio job not started")
	} else {
		result.Jobs = append(result.Jobs, job)
	}

	if job, err := StartJob(db, userID, lesson.ID, models.JobKindComicImage, func() error {
		return GenerateComicImage(db, lesson.ID, userID)
	}); err != nil {
		result.PartialErrors = append(result.PartialErrors, "comic image job not started")
	} else {
		result.Jobs = append(result.Jobs, job)
	}

	return result, nil
}

func generateRecapLesson(db *gorm.DB, userID uuid.UUID, number int, targetLanguage, userLanguage string) (*LessonResult, error) {
	start, end, err := RecapLessonRange(number)
	if err != nil {
		return nil, err
	}

	var prior []models.Lesson
	if err := db.
		Where("user_id = ? AND target_language = ?", userID, targetLanguage).
		Where("lesson_number BETWEEN ? AND ?", start, end).
		Find(&prior).Error; err != nil {
		return nil, err
	}

	topicsJSON, _ := json.Marshal(recapTopics(prior))

	lesson := models.Lesson{
		UserID:         userID,
		TargetLanguage: targetLanguage,
		UserLanguage:   userLanguage,
		LessonNumber:   number,
		Title:          fmt.Sprintf("Recap: Lessons %d-%d", start, end),
		Description:    fmt.Sprintf("Review of lessons %d to %d", start, end),
		Difficulty:     "review",
		Topics:         string(topicsJSON),
		IsRecapLesson:  true,
	}
	if err := db.Create(&lesson).Error; err != nil {
		return nil, fmt.Errorf("lưu recap lesson thất bại: %w", err)
	}

	result := &LessonResult{Lesson: &lesson}

	if job, err := StartJob(db, userID, lesson.ID, models.JobKindRecap, func() error {
		var l models.Lesson
		if err := db.First(&l, lesson.ID).Error; err != nil {
			return err
		}
		return GenerateRecapContent(db, &l)
	}); err != nil {
		result.PartialErrors = append(result.PartialErrors, "recap job not started")
	} else {
		result.Jobs = append(result.Jobs, job)
	}

	return result, nil
}

// RunAudioGeneration sinh audio tuần tự cho các câu chưa có audio của 1 lesson.
// Lỗi từng câu được log và bỏ qua, không làm hỏng cả batch.
func RunAudioGeneration(db *gorm.DB, lessonID uint, userID uuid.UUID) (generated int, total int, err error) {
	var lesson models.Lesson
	if err := db.First(&lesson, "id = ? AND user_id = ?", lessonID, userID).Error; err != nil {
		return 0, 0, err
	}

	var sentences []models.Sentence
	if err := db.
		Where("lesson_id = ? AND user_id = ? AND audio_generated = ?", lessonID, userID, false).
		Order("sentence_order ASC").
		Find(&sentences).Error; err != nil {
		return 0, 0, err
	}

	if len(sentences) == 0 {
		return 0, 0, nil
	}

	for _, sentence := range sentences {
		audio, err := SynthesizeSpeech(sentence.TargetText, lesson.TargetLanguage)
		if err != nil {
			log.Printf("Sinh audio thất bại cho câu %d: %v", sentence.ID, err)
			continue
		}

		key := fmt.Sprintf("audio/sentences/%d.mp3", sentence.ID)
		if _, err := UploadBytes(audio, key, "audio/mpeg"); err != nil {
			log.Printf("Upload audio thất bại cho câu %d: %v", sentence.ID, err)
			continue
		}

		if err := db.Model(&models.Sentence{}).Where("id = ?", sentence.ID).
			Updates(map[string]interface{}{
				"audio_url":       "/api/audio/" + key,
				"audio_generated": true,
			}).Error; err != nil {
			log.Printf("Cập nhật câu %d thất bại: %v", sentence.ID, err)
			continue
		}

		generated++

		// Nghỉ giữa các request để không vượt rate limit TTS
		time.Sleep(audioRequestDelay)
	}

	return generated, len(sentences), nil
}

// GenerateComicImage sinh ảnh minh họa kiểu truyện tranh cho 1 lesson
func GenerateComicImage(db *gorm.DB, lessonID uint, userID uuid.UUID) error {
	var lesson models.Lesson
	if err := db.Preload("Sentences", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sentence_order ASC")
	}).First(&lesson, "id = ? AND user_id = ?", lessonID, userID).Error; err != nil {
		return err
	}

	var topics []string
	_ = json.Unmarshal([]byte(lesson.Topics), &topics)

	var lines []string
	for _, s := range lesson.Sentences {
		lines = append(lines, s.TargetText)
	}

	prompt := fmt.Sprintf(`Create a single comic-style illustration (no text, no speech bubbles)
for a %s language lesson titled "%s" about: %s.
The scene should depict: %s.
Style: friendly, colorful, flat cartoon, suitable for a language learning app.`,
		lesson.TargetLanguage, lesson.Title, strings.Join(topics, ", "), strings.Join(lines, " / "))

	image, err := GeminiGenerateImage(prompt)
	if err != nil {
		return fmt.Errorf("sinh ảnh thất bại: %w", err)
	}

	key := fmt.Sprintf("images/lessons/%d.png", lesson.ID)
	if _, err := UploadBytes(image, key, "image/png"); err != nil {
		return fmt.Errorf("upload ảnh thất bại: %w", err)
	}

	return db.Model(&models.Lesson{}).Where("id = ?", lesson.ID).
		Updates(map[string]interface{}{
			"comic_image_url":       "/api/images/" + key,
			"comic_image_generated": true,
		}).Error
}

// RetryFailedAudio chạy lại audio cho các câu audio_generated=false.
// lessonID nil nghĩa là retry mọi lesson của user.
func RetryFailedAudio(db *gorm.DB, userID uuid.UUID, lessonID *uint) error {
	query := db.Model(&models.Lesson{}).
		Distinct("lessons.id").
		Joins("JOIN sentences ON sentences.lesson_id = lessons.id").
		Where("lessons.user_id = ? AND sentences.audio_generated = ?", userID, false)
	if lessonID != nil {
		query = query.Where("lessons.id = ?", *lessonID)
	}

	var lessonIDs []uint
	if err := query.Pluck("lessons.id", &lessonIDs).Error; err != nil {
		return err
	}

	for _, id := range lessonIDs {
		if _, err := StartJob(db, userID, id, models.JobKindAudio, func() error {
			_, _, err := RunAudioGeneration(db, id, userID)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

// RetryFailedComicImages chạy lại sinh ảnh cho các lesson chưa có ảnh
func RetryFailedComicImages(db *gorm.DB, userID uuid.UUID, lessonID *uint) error {
	query := db.Model(&models.Lesson{}).
		Where("user_id = ? AND comic_image_generated = ? AND is_recap_lesson = ?", userID, false, false)
	if lessonID != nil {
		query = query.Where("id = ?", *lessonID)
	}

	var lessonIDs []uint
	if err := query.Pluck("id", &lessonIDs).Error; err != nil {
		return err
	}

	for _, id := range lessonIDs {
		if _, err := StartJob(db, userID, id, models.JobKindComicImage, func() error {
			return GenerateComicImage(db, id, userID)
		}); err != nil {
			return err
		}
	}
	return nil
}
