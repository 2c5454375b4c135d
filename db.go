package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/kkscorpz/Job-Tracker/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		autoMigrate()
	}
	if v := os.Getenv("SEED_DEMO"); v == "1" || strings.EqualFold(v, "true") {
		seedDemo()
	}
}

// autoMigrate migrates models individually so a failure on one doesn't block others.
func autoMigrate() {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Printf("migration warning (users): %v", err)
	}
	if err := db.AutoMigrate(&models.Application{}); err != nil {
		log.Printf("migration warning (applications): %v", err)
	}
	if err := db.AutoMigrate(&models.Note{}); err != nil {
		log.Printf("migration warning (notes): %v", err)
	}
}

// seedDemo creates a demo account with a couple of applications so a fresh
// install has something to look at. Idempotent.
func seedDemo() {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "demo").Count(&count)
	if count > 0 {
		return
	}
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	demo := models.User{Username: "demo", HashedPassword: hashedPassword}
	if err := db.Create(&demo).Error; err != nil {
		log.Printf("failed to seed demo user: %v", err)
		return
	}
	log.Println("Seeded demo user: username=demo, password=demo1234")

	apps := []models.Application{
		{
			UserID:          demo.ID,
			CompanyName:     "Acme Corp",
			JobTitle:        "Backend Engineer",
			ApplicationDate: time.Now().AddDate(0, 0, -14),
			Method:          "Company website",
			Status:          models.StatusInterview,
		},
		{
			UserID:          demo.ID,
			CompanyName:     "Globex",
			JobTitle:        "Platform Engineer",
			ApplicationDate: time.Now().AddDate(0, 0, -3),
			Method:          "Referral",
			Status:          models.StatusApplied,
		},
	}
	for _, a := range apps {
		if err := db.Create(&a).Error; err != nil {
			log.Printf("failed to seed application %s: %v", a.CompanyName, err)
		}
	}
}
