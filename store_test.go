package main

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kkscorpz/Job-Tracker/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB points the package-level db at a throwaway sqlite database so
// tests run without a Postgres instance.
func setupTestDB(t *testing.T) {
	t.Helper()
	var err error
	db, err = gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tracker.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	autoMigrate()
}

func mustCreateUser(t *testing.T, username string) models.User {
	t.Helper()
	user, err := RegisterUser(username, "password123")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func mustCreateApplication(t *testing.T, userID uint, company, notes string) models.Application {
	t.Helper()
	app := models.Application{
		CompanyName:     company,
		JobTitle:        "Engineer",
		ApplicationDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:          models.StatusApplied,
		Notes:           notes,
	}
	if err := createApplication(userID, &app); err != nil {
		t.Fatalf("failed to create application: %v", err)
	}
	return app
}

func TestCreateApplicationAutoNote(t *testing.T) {
	setupTestDB(t)
	user := mustCreateUser(t, "alice")

	app := mustCreateApplication(t, user.ID, "Acme", "  Referred by Jane  ")

	var notes []models.Note
	if err := db.Where("application_id = ?", app.ID).Find(&notes).Error; err != nil {
		t.Fatalf("query notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected exactly 1 auto-note, got %d", len(notes))
	}
	if notes[0].Title != "Acme" {
		t.Errorf("auto-note title = %q, want %q", notes[0].Title, "Acme")
	}
	if notes[0].Body != "Referred by Jane" {
		t.Errorf("auto-note body = %q, want trimmed notes text", notes[0].Body)
	}
}

func TestCreateApplicationNoAutoNoteWhenEmpty(t *testing.T) {
	setupTestDB(t)
	user := mustCreateUser(t, "alice")

	for _, notes := range []string{"", "   ", "\n\t"} {
		app := mustCreateApplication(t, user.ID, "Acme", notes)
		var count int64
		db.Model(&models.Note{}).Where("application_id = ?", app.ID).Count(&count)
		if count != 0 {
			t.Errorf("notes=%q: expected no auto-note, got %d", notes, count)
		}
	}
}

func TestOwnershipScoping(t *testing.T) {
	setupTestDB(t)
	alice := mustCreateUser(t, "alice")
	bob := mustCreateUser(t, "bob")

	app := mustCreateApplication(t, alice.ID, "Acme", "call back monday")
	var note models.Note
	if err := db.Where("application_id = ?", app.ID).First(&note).Error; err != nil {
		t.Fatalf("auto-note missing: %v", err)
	}

	// every read and mutation with a valid id but the wrong user behaves as not found
	if _, err := getApplication(bob.ID, app.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("getApplication as other user: got %v, want ErrNotFound", err)
	}
	if _, _, err := listNotes(bob.ID, app.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("listNotes as other user: got %v, want ErrNotFound", err)
	}
	if _, err := createNote(bob.ID, app.ID, "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("createNote as other user: got %v, want ErrNotFound", err)
	}
	title := "stolen"
	if _, err := updateNote(bob.ID, app.ID, note.ID, &title, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("updateNote as other user: got %v, want ErrNotFound", err)
	}
	if err := deleteNote(bob.ID, app.ID, note.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleteNote as other user: got %v, want ErrNotFound", err)
	}
	if err := deleteApplication(bob.ID, app.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleteApplication as other user: got %v, want ErrNotFound", err)
	}

	// nothing was touched
	if _, err := getApplication(alice.ID, app.ID); err != nil {
		t.Errorf("owner lost access to application: %v", err)
	}
	var unchanged models.Note
	if err := db.First(&unchanged, note.ID).Error; err != nil {
		t.Fatalf("note disappeared: %v", err)
	}
	if unchanged.Title != note.Title {
		t.Errorf("note title changed to %q by non-owner", unchanged.Title)
	}

	// bob sees an empty list, not alice's records
	apps, err := listApplications(bob.ID)
	if err != nil {
		t.Fatalf("listApplications: %v", err)
	}
	if len(apps) != 0 {
		t.Errorf("expected empty list for other user, got %d applications", len(apps))
	}
}

func TestUpdateNotePartial(t *testing.T) {
	setupTestDB(t)
	user := mustCreateUser(t, "alice")
	app := mustCreateApplication(t, user.ID, "Acme", "")
	note, err := createNote(user.ID, app.ID, "first round", "phone screen went well")
	if err != nil {
		t.Fatalf("createNote: %v", err)
	}

	title := "second round"
	updated, err := updateNote(user.ID, app.ID, note.ID, &title, nil)
	if err != nil {
		t.Fatalf("updateNote (title only): %v", err)
	}
	if updated.Title != "second round" || updated.Body != "phone screen went well" {
		t.Errorf("title-only update got title=%q body=%q", updated.Title, updated.Body)
	}

	body := "onsite scheduled"
	updated, err = updateNote(user.ID, app.ID, note.ID, nil, &body)
	if err != nil {
		t.Fatalf("updateNote (body only): %v", err)
	}
	if updated.Title != "second round" || updated.Body != "onsite scheduled" {
		t.Errorf("body-only update got title=%q body=%q", updated.Title, updated.Body)
	}
}

func TestUpdateNoteWrongApplication(t *testing.T) {
	setupTestDB(t)
	user := mustCreateUser(t, "alice")
	app1 := mustCreateApplication(t, user.ID, "Acme", "")
	app2 := mustCreateApplication(t, user.ID, "Globex", "")
	note, err := createNote(user.ID, app1.ID, "t", "b")
	if err != nil {
		t.Fatalf("createNote: %v", err)
	}

	// note exists, but not under the supplied application
	title := "x"
	if _, err := updateNote(user.ID, app2.ID, note.ID, &title, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("update via wrong application: got %v, want ErrNotFound", err)
	}
	if err := deleteNote(user.ID, app2.ID, note.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete via wrong application: got %v, want ErrNotFound", err)
	}
}

func TestDeleteApplicationCascade(t *testing.T) {
	setupTestDB(t)
	user := mustCreateUser(t, "alice")
	app := mustCreateApplication(t, user.ID, "Acme", "auto note")
	if _, err := createNote(user.ID, app.ID, "extra", "manually added"); err != nil {
		t.Fatalf("createNote: %v", err)
	}

	if err := deleteApplication(user.ID, app.ID); err != nil {
		t.Fatalf("deleteApplication: %v", err)
	}

	var count int64
	db.Model(&models.Note{}).Where("application_id = ?", app.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no orphan notes after delete, got %d", count)
	}
	if _, err := getApplication(user.ID, app.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("application still readable after delete: %v", err)
	}
}

func TestListApplicationsOrder(t *testing.T) {
	setupTestDB(t)
	user := mustCreateUser(t, "alice")

	older := models.Application{CompanyName: "Old Co", JobTitle: "Dev", ApplicationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Status: models.StatusApplied}
	newer := models.Application{CompanyName: "New Co", JobTitle: "Dev", ApplicationDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Status: models.StatusApplied}
	if err := createApplication(user.ID, &older); err != nil {
		t.Fatalf("createApplication: %v", err)
	}
	if err := createApplication(user.ID, &newer); err != nil {
		t.Fatalf("createApplication: %v", err)
	}

	apps, err := listApplications(user.ID)
	if err != nil {
		t.Fatalf("listApplications: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(apps))
	}
	if apps[0].CompanyName != "New Co" {
		t.Errorf("expected most recent application date first, got %q", apps[0].CompanyName)
	}
}

func TestListNotesOrder(t *testing.T) {
	setupTestDB(t)
	user := mustCreateUser(t, "alice")
	app := mustCreateApplication(t, user.ID, "Acme", "")

	if _, err := createNote(user.ID, app.ID, "first", ""); err != nil {
		t.Fatalf("createNote: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := createNote(user.ID, app.ID, "second", ""); err != nil {
		t.Fatalf("createNote: %v", err)
	}

	_, notes, err := listNotes(user.ID, app.ID)
	if err != nil {
		t.Fatalf("listNotes: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].Title != "second" {
		t.Errorf("expected newest note first, got %q", notes[0].Title)
	}
}
