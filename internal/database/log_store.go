package database

import (
	"context"

	"github.com/logstore/core/internal/database/models"
	"gorm.io/gorm"
)

// LogFilter narrows a log query. Empty fields are ignored, set fields are
// combined with AND on top of the owner condition.
type LogFilter struct {
	SenderApplication string
	Environment       string
	Level             string
}

// IsEmpty reports whether the filter selects every log of the owner
func (f LogFilter) IsEmpty() bool {
	return f.SenderApplication == "" && f.Environment == "" && f.Level == ""
}

// LogStore persists log records with GORM. Every method is scoped to an
// owner and every mutation is a single statement whose affected-row count
// tells the caller whether anything matched.
type LogStore struct {
	db *gorm.DB
}

// NewLogStore creates a new LogStore instance
func NewLogStore(db *gorm.DB) *LogStore {
	return &LogStore{db: db}
}

// Find returns the owner's active logs matching filter in insertion order
func (s *LogStore) Find(ctx context.Context, userID uint, filter LogFilter) ([]models.Log, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.SenderApplication != "" {
		q = q.Where("sender_application = ?", filter.SenderApplication)
	}
	if filter.Environment != "" {
		q = q.Where("environment = ?", filter.Environment)
	}
	if filter.Level != "" {
		q = q.Where("level = ?", filter.Level)
	}

	logs := make([]models.Log, 0)
	if err := q.Order("id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Create inserts a new log record
func (s *LogStore) Create(ctx context.Context, log *models.Log) error {
	return s.db.WithContext(ctx).Create(log).Error
}

// SoftDelete marks one active log as deleted
func (s *LogStore) SoftDelete(ctx context.Context, userID, id uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Log{})
	return res.RowsAffected, res.Error
}

// SoftDeleteAll marks every active log of the owner as deleted
func (s *LogStore) SoftDeleteAll(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Log{})
	return res.RowsAffected, res.Error
}

// Restore clears the deletion marker of one soft-deleted log
func (s *LogStore) Restore(ctx context.Context, userID, id uint) (int64, error) {
	res := s.db.WithContext(ctx).Unscoped().
		Model(&models.Log{}).
		Where("id = ? AND user_id = ? AND deleted_at IS NOT NULL", id, userID).
		UpdateColumn("deleted_at", nil)
	return res.RowsAffected, res.Error
}

// RestoreAll clears the deletion marker of every soft-deleted log of the owner
func (s *LogStore) RestoreAll(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Unscoped().
		Model(&models.Log{}).
		Where("user_id = ? AND deleted_at IS NOT NULL", userID).
		UpdateColumn("deleted_at", nil)
	return res.RowsAffected, res.Error
}

// HardDelete removes one log row whether it is active or soft-deleted
func (s *LogStore) HardDelete(ctx context.Context, userID, id uint) (int64, error) {
	res := s.db.WithContext(ctx).Unscoped().
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Log{})
	return res.RowsAffected, res.Error
}

// HardDeleteAll removes every log row of the owner
func (s *LogStore) HardDeleteAll(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Unscoped().
		Where("user_id = ?", userID).
		Delete(&models.Log{})
	return res.RowsAffected, res.Error
}
