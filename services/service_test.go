package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/onmax/lingai/config"
	"github.com/onmax/lingai/models"
)

// newTestDB mở 1 DB sqlite in-memory riêng cho mỗi test
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

// stubProviders thay Gemini / TTS / upload bằng stub, khôi phục khi test xong
func stubProviders(t *testing.T) {
	t.Helper()

	origText := GeminiGenerateText
	origImage := GeminiGenerateImage
	origTTS := SynthesizeSpeech
	origUpload := UploadBytes
	origDownload := DownloadBytes
	origDelete := DeleteBytes
	origDelay := audioRequestDelay
	origLaunch := launchJob

	GeminiGenerateText = func(prompt string) (string, error) {
		return validLessonJSON, nil
	}
	GeminiGenerateImage = func(prompt string) ([]byte, error) {
		return []byte("png-bytes"), nil
	}
	SynthesizeSpeech = func(text, targetLanguage string) ([]byte, error) {
		return []byte("mp3-bytes"), nil
	}
	UploadBytes = func(data []byte, objectPath, contentType string) (string, error) {
		return objectPath, nil
	}
	DownloadBytes = func(objectPath string) ([]byte, error) {
		return []byte("blob-bytes"), nil
	}
	DeleteBytes = func(objectPath string) error {
		return nil
	}
	audioRequestDelay = 0

	// Job chạy đồng bộ để test không phải chờ goroutine
	launchJob = func(db *gorm.DB, jobID uuid.UUID, lessonID uint, kind models.JobKind, fn func() error) {
		runJob(db, jobID, lessonID, kind, fn)
	}

	t.Cleanup(func() {
		GeminiGenerateText = origText
		GeminiGenerateImage = origImage
		SynthesizeSpeech = origTTS
		UploadBytes = origUpload
		DownloadBytes = origDownload
		DeleteBytes = origDelete
		audioRequestDelay = origDelay
		launchJob = origLaunch
	})
}

const validLessonJSON = `{
  "title": "Ordering Coffee",
  "description": "Useful phrases for a morning at the cafe",
  "difficulty": "beginner",
  "sentences": [
    {"target_text": "Quiero un café con leche, por favor.", "user_text": "I want a coffee with milk, please.", "context": "at the counter", "difficulty": "beginner", "tags": ["food"]},
    {"target_text": "¿Cuánto cuesta?", "user_text": "How much does it cost?", "context": "asking the price", "difficulty": "beginner", "tags": ["food", "shopping"]},
    {"target_text": "Para llevar, gracias.", "user_text": "To go, thanks.", "context": "takeaway order", "difficulty": "beginner", "tags": ["food"]},
    {"target_text": "¿Tienen wifi aquí?", "user_text": "Do you have wifi here?", "context": "at the table", "difficulty": "beginner", "tags": ["travel"]},
    {"target_text": "La cuenta, por favor.", "user_text": "The bill, please.", "context": "before leaving", "difficulty": "beginner", "tags": ["food"]}
  ]
}`

// seedUser tạo user kèm profile mặc định cho test
func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()

	user := models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		FullName: "Test User",
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}
