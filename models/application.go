package models

import "time"

// Application statuses. Status is stored as plain text so any of these
// values can be set directly via a full update.
const (
	StatusApplied   = "Applied"
	StatusInterview = "Interview"
	StatusOffer     = "Offer"
	StatusRejected  = "Rejected"
)

// Application represents a tracked job application belonging to a user
type Application struct {
	ID               uint `gorm:"primaryKey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UserID           uint      `gorm:"index;not null"`
	User             User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CompanyName      string    `gorm:"size:200;not null"`
	JobTitle         string    `gorm:"size:200;not null"`
	ApplicationDate  time.Time `gorm:"type:date;not null"`
	Method           string    `gorm:"size:100"`
	ContactInfo      string    `gorm:"size:200"`
	Email            string    `gorm:"size:254"`
	Status           string    `gorm:"size:20;default:'Applied';not null"`
	Notes            string    `gorm:"type:text"`
	ApplicationNotes []Note    `gorm:"foreignKey:ApplicationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
