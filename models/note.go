package models

import "time"

// Note is a free-text annotation attached to exactly one Application.
// Ownership is transitive through the parent application; a note carries
// no user id of its own.
type Note struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ApplicationID uint        `gorm:"index;not null"`
	Application   Application `gorm:"foreignKey:ApplicationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Title         string      `gorm:"size:200;not null"`
	Body          string      `gorm:"type:text"`
}
