package services

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onmax/lingai/models"
	"github.com/onmax/lingai/ws"
)

// StartJob tạo bản ghi GenerationJob rồi chạy fn trong goroutine.
// Trạng thái (pending -> running -> succeeded/failed) lưu trong DB để client
// tra qua GET /api/jobs/:id, đồng thời đẩy qua websocket của lesson.
func StartJob(db *gorm.DB, userID uuid.UUID, lessonID uint, kind models.JobKind, fn func() error) (*models.GenerationJob, error) {
	job := models.GenerationJob{
		ID:       uuid.New(),
		UserID:   userID,
		LessonID: lessonID,
		Kind:     kind,
		Status:   models.JobPending,
	}
	if err := db.Create(&job).Error; err != nil {
		return nil, err
	}

	launchJob(db, job.ID, lessonID, kind, fn)
	return &job, nil
}

// launchJob là seam cho test chạy job đồng bộ thay vì goroutine
var launchJob = func(db *gorm.DB, jobID uuid.UUID, lessonID uint, kind models.JobKind, fn func() error) {
	go runJob(db, jobID, lessonID, kind, fn)
}

func runJob(db *gorm.DB, jobID uuid.UUID, lessonID uint, kind models.JobKind, fn func() error) {
	now := time.Now()
	db.Model(&models.GenerationJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{"status": models.JobRunning, "started_at": now})
	ws.SendLessonStatus(lessonID, string(kind), string(models.JobRunning), "")

	err := fn()

	finished := time.Now()
	if err != nil {
		log.Printf("Job %s (%s) cho lesson %d thất bại: %v", jobID, kind, lessonID, err)
		db.Model(&models.GenerationJob{}).Where("id = ?", jobID).
			Updates(map[string]interface{}{
				"status":      models.JobFailed,
				"error":       err.Error(),
				"finished_at": finished,
			})
		ws.SendLessonStatus(lessonID, string(kind), string(models.JobFailed), err.Error())
		return
	}

	db.Model(&models.GenerationJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{"status": models.JobSucceeded, "finished_at": finished})
	ws.SendLessonStatus(lessonID, string(kind), string(models.JobSucceeded), "")
}
