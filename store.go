package main

import (
	"errors"
	"strings"

	"github.com/kkscorpz/Job-Tracker/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist under the requesting
// user's ownership. A record owned by a different user is reported exactly
// like a missing one, so valid ids cannot be probed for existence.
var ErrNotFound = errors.New("record not found")

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// listApplications returns all of a user's applications, most recent
// application date first.
func listApplications(userID uint) ([]models.Application, error) {
	var apps []models.Application
	if err := db.Where("user_id = ?", userID).Order("application_date desc").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// getApplication fetches a single application scoped to its owner.
func getApplication(userID, appID uint) (models.Application, error) {
	var app models.Application
	if err := db.Where("id = ? AND user_id = ?", appID, userID).First(&app).Error; err != nil {
		return models.Application{}, notFoundOr(err)
	}
	return app, nil
}

// createApplication inserts the application and, when its free-text notes
// field is non-empty after trimming, synthesizes one Note titled after the
// company in the same transaction.
func createApplication(userID uint, app *models.Application) error {
	app.UserID = userID
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		if body := strings.TrimSpace(app.Notes); body != "" {
			note := models.Note{ApplicationID: app.ID, Title: app.CompanyName, Body: body}
			if err := tx.Create(&note).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// deleteApplication removes an owned application together with its notes.
// The notes are deleted explicitly so cascade behavior does not depend on
// database-level foreign key enforcement.
func deleteApplication(userID, appID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.Where("id = ? AND user_id = ?", appID, userID).First(&app).Error; err != nil {
			return notFoundOr(err)
		}
		if err := tx.Where("application_id = ?", app.ID).Delete(&models.Note{}).Error; err != nil {
			return err
		}
		return tx.Delete(&app).Error
	})
}

// listNotes returns the notes of an owned application, newest first.
func listNotes(userID, appID uint) (models.Application, []models.Note, error) {
	app, err := getApplication(userID, appID)
	if err != nil {
		return models.Application{}, nil, err
	}
	var notes []models.Note
	if err := db.Where("application_id = ?", app.ID).Order("created_at desc").Find(&notes).Error; err != nil {
		return models.Application{}, nil, err
	}
	return app, notes, nil
}

// createNote attaches a note to an owned application.
func createNote(userID, appID uint, title, body string) (models.Note, error) {
	app, err := getApplication(userID, appID)
	if err != nil {
		return models.Note{}, err
	}
	note := models.Note{ApplicationID: app.ID, Title: title, Body: body}
	if err := db.Create(&note).Error; err != nil {
		return models.Note{}, err
	}
	return note, nil
}

// getNote fetches a note scoped to an owned application. A note that exists
// under a different application than the one supplied is treated as not
// found.
func getNote(userID, appID, noteID uint) (models.Note, error) {
	app, err := getApplication(userID, appID)
	if err != nil {
		return models.Note{}, err
	}
	var note models.Note
	if err := db.Where("id = ? AND application_id = ?", noteID, app.ID).First(&note).Error; err != nil {
		return models.Note{}, notFoundOr(err)
	}
	return note, nil
}

// updateNote applies a partial update: a nil title or body keeps the prior
// value.
func updateNote(userID, appID, noteID uint, title, body *string) (models.Note, error) {
	note, err := getNote(userID, appID, noteID)
	if err != nil {
		return models.Note{}, err
	}
	if title != nil {
		note.Title = *title
	}
	if body != nil {
		note.Body = *body
	}
	if err := db.Save(&note).Error; err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func deleteNote(userID, appID, noteID uint) error {
	note, err := getNote(userID, appID, noteID)
	if err != nil {
		return err
	}
	return db.Delete(&note).Error
}
