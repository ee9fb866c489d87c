package services

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/onmax/lingai/models"
)

// Frontmatter của envelope markdown bài học lưu trên blob.
// Trường Envelope là schema tag bắt buộc: chỉ chấp nhận "v1",
// không còn kiểu đoán định dạng (JSON-bọc-markdown, regex...) như trước.
type LessonFrontmatter struct {
	Envelope    string   `yaml:"envelope"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Language    string   `yaml:"language"`
	Difficulty  string   `yaml:"difficulty"`
	Topics      []string `yaml:"topics"`
	Order       int      `yaml:"order"`
}

const envelopeVersion = "v1"

// BuildLessonEnvelope dựng document markdown (frontmatter + nội dung câu)
// để lưu lên blob storage.
func BuildLessonEnvelope(lesson *models.Lesson, topics []string, sentences []models.Sentence) (string, error) {
	fm := LessonFrontmatter{
		Envelope:    envelopeVersion,
		Title:       lesson.Title,
		Description: lesson.Description,
		Language:    lesson.TargetLanguage,
		Difficulty:  lesson.Difficulty,
		Topics:      topics,
		Order:       lesson.LessonNumber,
	}

	fmBytes, err := yaml.Marshal(&fm)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fmBytes)
	b.WriteString("---\n\n")
	b.WriteString("# " + lesson.Title + "\n\n")
	for _, s := range sentences {
		fmt.Fprintf(&b, "%d. **%s** — %s\n", s.SentenceOrder, s.TargetText, s.UserText)
	}
	return b.String(), nil
}

// ParseLessonEnvelope tách frontmatter và nội dung, từ chối envelope sai phiên bản
func ParseLessonEnvelope(raw string) (*LessonFrontmatter, string, error) {
	if !strings.HasPrefix(raw, "---\n") {
		return nil, "", fmt.Errorf("thiếu frontmatter")
	}

	rest := raw[len("---\n"):]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return nil, "", fmt.Errorf("frontmatter không đóng")
	}

	var fm LessonFrontmatter
	if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil {
		return nil, "", fmt.Errorf("frontmatter không hợp lệ: %w", err)
	}
	if fm.Envelope != envelopeVersion {
		return nil, "", fmt.Errorf("envelope version không được hỗ trợ: %q", fm.Envelope)
	}

	content := strings.TrimPrefix(rest[idx+len("\n---"):], "\n")
	return &fm, strings.TrimLeft(content, "\n"), nil
}
