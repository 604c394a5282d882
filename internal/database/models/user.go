package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that owns log records
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Name         string         `gorm:"size:100" json:"name"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Logs []Log `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"logs,omitempty"`
}
