package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/onmax/lingai/config"
	"github.com/onmax/lingai/models"
	"github.com/onmax/lingai/routes"
	"github.com/onmax/lingai/services"
	"github.com/onmax/lingai/utils"
)

const testLessonJSON = `{
  "title": "Ordering Coffee",
  "description": "Cafe phrases",
  "difficulty": "beginner",
  "sentences": [
    {"target_text": "Quiero un café.", "user_text": "I want a coffee.", "context": "", "difficulty": "beginner", "tags": ["food"]},
    {"target_text": "¿Cuánto cuesta?", "user_text": "How much does it cost?", "context": "", "difficulty": "beginner", "tags": ["food"]},
    {"target_text": "La cuenta, por favor.", "user_text": "The bill, please.", "context": "", "difficulty": "beginner", "tags": ["food"]},
    {"target_text": "¿Tienen wifi?", "user_text": "Do you have wifi?", "context": "", "difficulty": "beginner", "tags": ["travel"]},
    {"target_text": "Para llevar.", "user_text": "To go.", "context": "", "difficulty": "beginner", "tags": ["food"]}
  ]
}`

func setupAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-for-api-tests")
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	// Stub các provider bên ngoài
	origText := services.GeminiGenerateText
	origImage := services.GeminiGenerateImage
	origTTS := services.SynthesizeSpeech
	origUpload := services.UploadBytes
	origDownload := services.DownloadBytes
	origDelete := services.DeleteBytes
	services.GeminiGenerateText = func(prompt string) (string, error) { return testLessonJSON, nil }
	services.GeminiGenerateImage = func(prompt string) ([]byte, error) { return []byte("png"), nil }
	services.SynthesizeSpeech = func(text, lang string) ([]byte, error) { return []byte("mp3"), nil }
	services.UploadBytes = func(data []byte, objectPath, contentType string) (string, error) {
		return objectPath, nil
	}
	services.DownloadBytes = func(objectPath string) ([]byte, error) {
		return []byte("blob-bytes"), nil
	}
	services.DeleteBytes = func(objectPath string) error { return nil }
	t.Cleanup(func() {
		services.GeminiGenerateText = origText
		services.GeminiGenerateImage = origImage
		services.SynthesizeSpeech = origTTS
		services.UploadBytes = origUpload
		services.DownloadBytes = origDownload
		services.DeleteBytes = origDelete
	})

	r := gin.New()
	return routes.SetupRouter(r, db), db
}

func seedAuthedUser(t *testing.T, db *gorm.DB) (uuid.UUID, string) {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		FullName: "Test User",
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID.String())
	require.NoError(t, err)
	return user.ID, token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	}
	return w, parsed
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := setupAPI(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "ana@example.com", "password": "secret123", "full_name": "Ana",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, body["token"])

	// Email trùng bị từ chối
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "ana@example.com", "password": "secret123", "full_name": "Ana",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ana@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["token"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ana@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired(t *testing.T) {
	r, _ := setupAPI(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/lessons", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/lessons", "not-a-valid-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOnboarding_ReplacesTopics(t *testing.T) {
	r, db := setupAPI(t)
	_, token := seedAuthedUser(t, db)

	w, body := doJSON(t, r, http.MethodPost, "/api/onboarding", token, gin.H{
		"topics": []string{"travel", "food"}, "target_language": "spanish",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["first_lesson_created"])

	// Onboarding lại với bộ topic khác: thay toàn bộ, không merge
	w, _ = doJSON(t, r, http.MethodPost, "/api/onboarding", token, gin.H{
		"topics": []string{"music"}, "target_language": "french",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, r, http.MethodGet, "/api/onboarding", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"music"}, body["topics"])
	assert.Equal(t, "french", body["target_language"])
}

func TestGenerateLessonEndpoint(t *testing.T) {
	r, db := setupAPI(t)
	_, token := seedAuthedUser(t, db)

	w, body := doJSON(t, r, http.MethodPost, "/api/lessons/generate", token, gin.H{
		"topics": []string{"food"}, "target_language": "spanish",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	lesson := body["lesson"].(map[string]interface{})
	assert.Equal(t, "Ordering Coffee", lesson["title"])
	assert.EqualValues(t, 1, lesson["lesson_number"])
	assert.EqualValues(t, 5, lesson["total_sentences"])

	sentences := body["sentences"].([]interface{})
	require.Len(t, sentences, 5)

	// Lấy lại lesson kèm câu theo thứ tự
	lessonID := int(lesson["id"].(float64))
	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/lessons/%d", lessonID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"food"}, body["topics"])

	// User khác không thấy lesson này
	_, otherToken := seedAuthedUser(t, db)
	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/lessons/%d", lessonID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateAudio_Idempotent(t *testing.T) {
	r, db := setupAPI(t)
	userID, token := seedAuthedUser(t, db)

	lesson := models.Lesson{
		UserID: userID, TargetLanguage: "spanish", LessonNumber: 1, Title: "L1",
	}
	require.NoError(t, db.Create(&lesson).Error)
	for i := 1; i <= 2; i++ {
		require.NoError(t, db.Create(&models.Sentence{
			LessonID: lesson.ID, UserID: userID,
			TargetText: "Hola", UserText: "Hello", SentenceOrder: i,
			AudioGenerated: true, AudioURL: "/api/audio/audio/sentences/1.mp3",
		}).Error)
	}

	// Mọi câu đã có audio: no-op
	w, body := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/lessons/%d/generate-audio", lesson.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["generated"])
	assert.EqualValues(t, 0, body["total"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/lessons/999/generate-audio", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProgress_PracticeAndClamp(t *testing.T) {
	r, db := setupAPI(t)
	userID, token := seedAuthedUser(t, db)

	lesson := models.Lesson{
		UserID: userID, TargetLanguage: "spanish", LessonNumber: 1, Title: "L1",
	}
	require.NoError(t, db.Create(&lesson).Error)
	sentence := models.Sentence{
		LessonID: lesson.ID, UserID: userID,
		TargetText: "Hola", UserText: "Hello", SentenceOrder: 1,
	}
	require.NoError(t, db.Create(&sentence).Error)

	path := fmt.Sprintf("/api/user/progress/sentences/%d/practice", sentence.ID)
	for i := 0; i < 8; i++ {
		w, _ := doJSON(t, r, http.MethodPost, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var progress models.SentenceProgress
	require.NoError(t, db.Where("user_id = ? AND sentence_id = ?", userID, sentence.ID).First(&progress).Error)
	assert.Equal(t, 8, progress.PracticeCount)
	assert.Equal(t, models.MaxMasteryLevel, progress.MasteryLevel)
	assert.NotNil(t, progress.LastPracticedAt)
}

func TestUpdateProgress_Upsert(t *testing.T) {
	r, db := setupAPI(t)
	userID, token := seedAuthedUser(t, db)

	lesson := models.Lesson{
		UserID: userID, TargetLanguage: "spanish", LessonNumber: 1, Title: "L1",
	}
	require.NoError(t, db.Create(&lesson).Error)
	sentence := models.Sentence{
		LessonID: lesson.ID, UserID: userID,
		TargetText: "Hola", UserText: "Hello", SentenceOrder: 1,
	}
	require.NoError(t, db.Create(&sentence).Error)

	// Câu 999 không tồn tại: bị bỏ qua, không làm hỏng cả batch
	w, body := doJSON(t, r, http.MethodPut, "/api/user/progress/sentences", token, gin.H{
		"items": []gin.H{
			{"sentence_id": sentence.ID, "completed": true},
			{"sentence_id": 999, "completed": true},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["updated"])
	assert.EqualValues(t, 2, body["total"])

	// Upsert: gọi lại không tạo dòng mới
	w, _ = doJSON(t, r, http.MethodPut, "/api/user/progress/sentences", token, gin.H{
		"items": []gin.H{{"sentence_id": sentence.ID, "completed": false}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.SentenceProgress{}).Where("user_id = ?", userID).Count(&count)
	assert.EqualValues(t, 1, count)

	var progress models.SentenceProgress
	require.NoError(t, db.Where("user_id = ?", userID).First(&progress).Error)
	assert.False(t, progress.Completed)
}

func TestListTopicsAndLanguages(t *testing.T) {
	r, _ := setupAPI(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/topics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	topics := body["topics"].([]interface{})
	assert.EqualValues(t, 25, body["total"])

	// Sắp theo alphabet
	for i := 1; i < len(topics); i++ {
		assert.LessOrEqual(t, topics[i-1].(string), topics[i].(string))
	}

	w, body = doJSON(t, r, http.MethodGet, "/api/languages", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 10, body["total"])
}

func TestLessonNavigation(t *testing.T) {
	r, db := setupAPI(t)
	userID, token := seedAuthedUser(t, db)

	var ids []uint
	for n := 1; n <= 3; n++ {
		lesson := models.Lesson{
			UserID: userID, TargetLanguage: "spanish", LessonNumber: n,
			Title: fmt.Sprintf("L%d", n),
		}
		require.NoError(t, db.Create(&lesson).Error)
		ids = append(ids, lesson.ID)
	}

	w, body := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/lessons/%d/navigation", ids[1]), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.EqualValues(t, ids[1], body["current_lesson_id"])
	assert.Equal(t, true, body["has_previous"])
	assert.Equal(t, true, body["has_next"])
	assert.EqualValues(t, ids[0], body["previous_lesson_id"])
	assert.EqualValues(t, ids[2], body["next_lesson_id"])

	// Bài đầu không có previous
	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/lessons/%d/navigation", ids[0]), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["has_previous"])
	assert.Nil(t, body["previous_lesson_id"])
	assert.Equal(t, true, body["has_next"])
}

func TestGenerateNextLesson(t *testing.T) {
	r, db := setupAPI(t)
	userID, token := seedAuthedUser(t, db)

	lesson := models.Lesson{
		UserID: userID, TargetLanguage: "spanish", UserLanguage: "english",
		LessonNumber: 1, Title: "L1", Topics: `["food"]`,
	}
	require.NoError(t, db.Create(&lesson).Error)

	w, body := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/lessons/%d/generate-next", lesson.ID), token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	next := body["lesson"].(map[string]interface{})
	assert.EqualValues(t, 2, next["lesson_number"])
	assert.Equal(t, "spanish", next["target_language"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/lessons/999/generate-next", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLastLessonProgress(t *testing.T) {
	r, db := setupAPI(t)
	userID, token := seedAuthedUser(t, db)

	// Chưa có profile: last_lesson_id null
	w, body := doJSON(t, r, http.MethodGet, "/api/user/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	progress := body["progress"].(map[string]interface{})
	assert.Nil(t, progress["last_lesson_id"])

	lesson := models.Lesson{
		UserID: userID, TargetLanguage: "spanish", LessonNumber: 1, Title: "L1",
	}
	require.NoError(t, db.Create(&lesson).Error)

	w, _ = doJSON(t, r, http.MethodPut, "/api/user/progress", token, gin.H{"last_lesson_id": lesson.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, r, http.MethodGet, "/api/user/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	progress = body["progress"].(map[string]interface{})
	assert.EqualValues(t, lesson.ID, progress["last_lesson_id"])

	// Bài không thuộc về user bị từ chối
	w, _ = doJSON(t, r, http.MethodPut, "/api/user/progress", token, gin.H{"last_lesson_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetJob(t *testing.T) {
	r, db := setupAPI(t)
	userID, token := seedAuthedUser(t, db)

	job := models.GenerationJob{
		ID: uuid.New(), UserID: userID, LessonID: 1,
		Kind: models.JobKindAudio, Status: models.JobSucceeded,
	}
	require.NoError(t, db.Create(&job).Error)

	w, body := doJSON(t, r, http.MethodGet, "/api/jobs/"+job.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := body["job"].(map[string]interface{})
	assert.Equal(t, "succeeded", got["status"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/jobs/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/jobs/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamMedia_OptionalAuth(t *testing.T) {
	r, db := setupAPI(t)
	_, token := seedAuthedUser(t, db)

	// Không có token vẫn tải được
	w, _ := doJSON(t, r, http.MethodGet, "/api/audio/audio/sentences/1.mp3", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "blob-bytes", w.Body.String())
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")

	// Token hợp lệ cũng tải được
	w, _ = doJSON(t, r, http.MethodGet, "/api/recap/recap/users/u/lessons/7.md", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Token hỏng không chặn request, coi như khách vãng lai
	w, _ = doJSON(t, r, http.MethodGet, "/api/images/images/lessons/1.png", "not-a-real-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Key sai prefix bị từ chối
	w, _ = doJSON(t, r, http.MethodGet, "/api/audio/images/lessons/1.png", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAccount(t *testing.T) {
	r, db := setupAPI(t)
	userID, token := seedAuthedUser(t, db)

	lesson := models.Lesson{
		UserID: userID, TargetLanguage: "spanish", LessonNumber: 1, Title: "L1",
		ContentKey: "lessons/" + userID.String() + "/spanish/01.l1.md",
	}
	require.NoError(t, db.Create(&lesson).Error)

	var deleted []string
	services.DeleteBytes = func(objectPath string) error {
		deleted = append(deleted, objectPath)
		return nil
	}

	// Chưa đăng nhập thì không xóa được
	w, _ := doJSON(t, r, http.MethodDelete, "/api/user/account", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := doJSON(t, r, http.MethodDelete, "/api/user/account", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, deleted, lesson.ContentKey)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error)
	assert.Zero(t, users)
	var lessons int64
	require.NoError(t, db.Model(&models.Lesson{}).Where("user_id = ?", userID).Count(&lessons).Error)
	assert.Zero(t, lessons)
}
