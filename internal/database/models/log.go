package models

import (
	"time"

	"gorm.io/gorm"
)

// Log is an application log record submitted by a user.
// DeletedAt is the soft-delete marker: a non-null value hides the row from
// normal reads until it is restored or purged.
type Log struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"index;not null" json:"user_id"`
	SenderApplication string         `gorm:"size:100;index;not null" json:"sender_application"`
	Environment       string         `gorm:"size:50;index;not null" json:"environment"` // free-form deployment name, stored lower-case
	Level             string         `gorm:"size:20;index;not null" json:"level"`
	Message           string         `gorm:"type:text;not null" json:"message"`
	Details           string         `gorm:"type:text" json:"details,omitempty"` // free-form payload, usually JSON
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// LogLevel is the severity attached to a log record
type LogLevel string

const (
	LogLevelDebug    LogLevel = "debug"
	LogLevelInfo     LogLevel = "info"
	LogLevelWarning  LogLevel = "warning"
	LogLevelError    LogLevel = "error"
	LogLevelCritical LogLevel = "critical"
)

// LogLevels lists every accepted level
var LogLevels = []LogLevel{
	LogLevelDebug,
	LogLevelInfo,
	LogLevelWarning,
	LogLevelError,
	LogLevelCritical,
}
