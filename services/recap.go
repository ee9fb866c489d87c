package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/onmax/lingai/models"
)

// ErrNotRecapLesson trả về khi gọi RecapLessonRange với số bài không phải mốc ôn tập
var ErrNotRecapLesson = errors.New("lesson number không phải mốc ôn tập")

// IsRecapLesson: mỗi bài thứ 7 là bài ôn tập (7, 14, 21, ...)
func IsRecapLesson(lessonNumber int) bool {
	return lessonNumber > 0 && lessonNumber%7 == 0
}

// RecapLessonRange trả về khoảng 6 bài được ôn: bài 7 ôn 1-6, bài 14 ôn 8-13.
func RecapLessonRange(recapLessonNumber int) (start int, end int, err error) {
	if !IsRecapLesson(recapLessonNumber) {
		return 0, 0, fmt.Errorf("%w: %d", ErrNotRecapLesson, recapLessonNumber)
	}
	end = recapLessonNumber - 1
	start = end - 5
	return start, end, nil
}

// lessonsForRecap lấy các bài (kèm câu, đúng thứ tự) trong khoảng ôn tập
func lessonsForRecap(db *gorm.DB, lesson *models.Lesson) ([]models.Lesson, error) {
	start, end, err := RecapLessonRange(lesson.LessonNumber)
	if err != nil {
		return nil, err
	}

	var lessons []models.Lesson
	if err := db.
		Preload("Sentences", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sentence_order ASC")
		}).
		Where("user_id = ? AND target_language = ?", lesson.UserID, lesson.TargetLanguage).
		Where("lesson_number BETWEEN ? AND ?", start, end).
		Where("is_recap_lesson = ?", false).
		Order("lesson_number ASC").
		Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

// titleCase viết hoa chữ cái đầu, dùng cho tên ngôn ngữ trong prompt
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// buildRecapPrompt ghép grammar/vocab từ course content + các câu đã học thành prompt
func buildRecapPrompt(lesson *models.Lesson, lessons []models.Lesson) string {
	start, end, _ := RecapLessonRange(lesson.LessonNumber)

	grammar := map[string]bool{}
	vocab := map[string]bool{}
	for _, cc := range CourseContentInRange(start, end) {
		for _, g := range cc.GrammarPoints {
			grammar[g] = true
		}
		for _, v := range cc.VocabularyTopics {
			vocab[v] = true
		}
	}

	var sentenceLines []string
	for _, l := range lessons {
		for _, s := range l.Sentences {
			sentenceLines = append(sentenceLines, fmt.Sprintf("- %s → %s", s.TargetText, s.UserText))
		}
	}

	return fmt.Sprintf(`## %s Recap Generator · Lesson %d

You are a seasoned %s instructor creating an Assimil-style recap for lessons %d-%d.
Learners have already encountered this material; the goal is reinforcement through
concise review and contextual practice. No new grammar, only familiar vocabulary.

### INPUT
- Grammar points: %s
- Vocabulary topics: %s
- Canonical sentences:
%s

### TASK
Return a single Markdown document with exactly these sections and nothing else:

# Recap: Lessons %d-%d

## 1 · Grammar Review
For each grammar point: brief rule (max 2 lines), 1-2 lesson examples with the grammar
in bold, and one fresh example reusing lesson vocabulary.

## 2 · Vocabulary in Context
Two-column table (%s | %s) covering most of the words from the listed topics, then one
short illustrative sentence per word.

## 3 · Key Sentences
8-10 pivotal sentences, each with the %s text, the %s translation and a short note.

## 4 · Practice Exercises
Exactly four exercises (fill-in-the-blank, sentence unscramble, translation,
mini-dialogue completion) with an answer key inside a <details> block.

Do not invent new vocabulary. Output only valid Markdown, no code fences.`,
		titleCase(lesson.TargetLanguage), lesson.LessonNumber,
		lesson.TargetLanguage, start, end,
		strings.Join(sortedKeys(grammar), ", "),
		strings.Join(sortedKeys(vocab), ", "),
		strings.Join(sentenceLines, "\n"),
		start, end,
		titleCase(lesson.TargetLanguage), titleCase(lesson.UserLanguage),
		lesson.TargetLanguage, lesson.UserLanguage)
}

// GenerateRecapContent sinh markdown ôn tập cho 1 bài recap đã tồn tại,
// lưu blob và cập nhật recap_markdown_url + recap_generated.
func GenerateRecapContent(db *gorm.DB, lesson *models.Lesson) error {
	if !lesson.IsRecapLesson {
		return fmt.Errorf("%w: lesson %d", ErrNotRecapLesson, lesson.LessonNumber)
	}

	lessons, err := lessonsForRecap(db, lesson)
	if err != nil {
		return err
	}
	if len(lessons) == 0 {
		return fmt.Errorf("không có bài học nào trong khoảng ôn tập của bài %d", lesson.LessonNumber)
	}

	markdown, err := GeminiGenerateText(buildRecapPrompt(lesson, lessons))
	if err != nil {
		return fmt.Errorf("sinh nội dung recap thất bại: %w", err)
	}

	key := fmt.Sprintf("recap/users/%s/lessons/%d.md", lesson.UserID, lesson.ID)
	if _, err := UploadBytes([]byte(markdown), key, "text/markdown"); err != nil {
		return fmt.Errorf("lưu recap markdown thất bại: %w", err)
	}

	if err := db.Model(lesson).Updates(map[string]interface{}{
		"recap_markdown_url": "/api/recap/" + key,
		"recap_generated":    true,
	}).Error; err != nil {
		return err
	}
	lesson.RecapMarkdownURL = "/api/recap/" + key
	lesson.RecapGenerated = true

	log.Printf("Recap lesson %d generated cho user %s", lesson.LessonNumber, lesson.UserID)
	return nil
}

// recapTopics gom topic của các bài trong khoảng ôn làm topics của bài recap
func recapTopics(lessons []models.Lesson) []string {
	seen := map[string]bool{}
	var topics []string
	for _, l := range lessons {
		var ts []string
		if err := json.Unmarshal([]byte(l.Topics), &ts); err != nil {
			continue
		}
		for _, t := range ts {
			if !seen[t] {
				seen[t] = true
				topics = append(topics, t)
			}
		}
	}
	return topics
}
