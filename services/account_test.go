package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onmax/lingai/models"
)

func TestDeleteUserAccount(t *testing.T) {
	db := newTestDB(t)
	stubProviders(t)
	userID := seedUser(t, db)

	lesson := models.Lesson{
		UserID:              userID,
		TargetLanguage:      "spanish",
		UserLanguage:        "english",
		LessonNumber:        1,
		Title:               "Ordering Coffee",
		Topics:              `["food"]`,
		ContentKey:          "lessons/" + userID.String() + "/spanish/01.ordering-coffee.md",
		ComicImageURL:       "/api/images/images/lessons/1.png",
		ComicImageGenerated: true,
	}
	require.NoError(t, db.Create(&lesson).Error)

	sentence := models.Sentence{
		LessonID:       lesson.ID,
		UserID:         userID,
		TargetText:     "Hola",
		UserText:       "Hello",
		SentenceOrder:  1,
		AudioURL:       "/api/audio/audio/sentences/1.mp3",
		AudioGenerated: true,
	}
	require.NoError(t, db.Create(&sentence).Error)
	require.NoError(t, db.Create(&models.SentenceProgress{
		UserID: userID, SentenceID: sentence.ID, LessonID: lesson.ID, PracticeCount: 3,
	}).Error)
	require.NoError(t, db.Create(&models.UserTopic{UserID: userID, Topic: "food"}).Error)
	require.NoError(t, db.Create(&models.UserProfile{UserID: userID, TargetLanguage: "spanish"}).Error)
	require.NoError(t, db.Create(&models.GenerationJob{
		ID: uuid.New(), UserID: userID, LessonID: lesson.ID,
		Kind: models.JobKindAudio, Status: models.JobSucceeded,
	}).Error)

	var deleted []string
	DeleteBytes = func(objectPath string) error {
		deleted = append(deleted, objectPath)
		return nil
	}

	require.NoError(t, DeleteUserAccount(db, userID))

	assert.ElementsMatch(t, []string{
		"lessons/" + userID.String() + "/spanish/01.ordering-coffee.md",
		"images/lessons/1.png",
		"audio/sentences/1.mp3",
	}, deleted)

	for _, m := range []interface{}{
		&models.Lesson{}, &models.Sentence{}, &models.SentenceProgress{},
		&models.UserTopic{}, &models.UserProfile{}, &models.GenerationJob{},
	} {
		var count int64
		require.NoError(t, db.Model(m).Where("user_id = ?", userID).Count(&count).Error)
		assert.Zero(t, count)
	}
	var users int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error)
	assert.Zero(t, users)
}

func TestDeleteUserAccount_BlobFailureDoesNotBlock(t *testing.T) {
	db := newTestDB(t)
	stubProviders(t)
	userID := seedUser(t, db)

	lesson := models.Lesson{
		UserID:         userID,
		TargetLanguage: "spanish",
		UserLanguage:   "english",
		LessonNumber:   1,
		Title:          "Ordering Coffee",
		Topics:         `["food"]`,
		ContentKey:     "lessons/" + userID.String() + "/spanish/01.ordering-coffee.md",
	}
	require.NoError(t, db.Create(&lesson).Error)

	DeleteBytes = func(objectPath string) error {
		return assert.AnError
	}

	require.NoError(t, DeleteUserAccount(db, userID))

	var count int64
	require.NoError(t, db.Model(&models.Lesson{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Zero(t, count)
}
