package services

import (
	_ "embed"
	"encoding/json"
	"log"
	"sort"
)

// Metadata khung chương trình: grammar/vocab theo số bài,
// dùng khi dựng prompt cho bài ôn tập.
type CourseLesson struct {
	LessonNumber       int      `json:"lesson_number"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	GrammarPoints      []string `json:"grammar_points"`
	VocabularyTopics   []string `json:"vocabulary_topics"`
	CommunicationGoals []string `json:"communication_goals"`
}

type courseContentFile struct {
	Lessons []CourseLesson `json:"lessons"`
}

//go:embed course-content.json
var courseContentRaw []byte

var courseContent []CourseLesson

func init() {
	var parsed courseContentFile
	if err := json.Unmarshal(courseContentRaw, &parsed); err != nil {
		log.Fatalf("course-content.json không hợp lệ: %v", err)
	}
	for _, l := range parsed.Lessons {
		if l.LessonNumber < 1 {
			log.Fatalf("course-content.json: lesson_number %d không hợp lệ", l.LessonNumber)
		}
	}
	courseContent = parsed.Lessons
}

// CourseContentInRange trả về metadata các bài có lesson_number trong [start, end]
func CourseContentInRange(start, end int) []CourseLesson {
	var out []CourseLesson
	for _, l := range courseContent {
		if l.LessonNumber >= start && l.LessonNumber <= end {
			out = append(out, l)
		}
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
