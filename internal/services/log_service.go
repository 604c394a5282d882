package services

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/logstore/core/internal/database"
	"github.com/logstore/core/internal/database/models"
)

// LogStore is the persistence the log lifecycle depends on. Mutations report
// the number of affected rows so that existence checks and writes happen in
// one statement.
type LogStore interface {
	Find(ctx context.Context, userID uint, filter database.LogFilter) ([]models.Log, error)
	Create(ctx context.Context, log *models.Log) error
	SoftDelete(ctx context.Context, userID, id uint) (int64, error)
	SoftDeleteAll(ctx context.Context, userID uint) (int64, error)
	Restore(ctx context.Context, userID, id uint) (int64, error)
	RestoreAll(ctx context.Context, userID uint) (int64, error)
	HardDelete(ctx context.Context, userID, id uint) (int64, error)
	HardDeleteAll(ctx context.Context, userID uint) (int64, error)
}

// LogService handles the lifecycle of user-owned log records
type LogService struct {
	store  LogStore
	logger *slog.Logger
}

// NewLogService creates a new LogService instance
func NewLogService(store LogStore, logger *slog.Logger) *LogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogService{
		store:  store,
		logger: logger.With("source", "logs"),
	}
}

// CreateLogInput is the payload accepted for a new log record
type CreateLogInput struct {
	SenderApplication string `json:"sender_application"`
	Environment       string `json:"environment"`
	Level             string `json:"level"`
	Message           string `json:"message"`
	Details           string `json:"details"`
}

// normalize lower-cases environment and level and trims whitespace
func (in CreateLogInput) normalize() CreateLogInput {
	in.SenderApplication = strings.TrimSpace(in.SenderApplication)
	in.Environment = strings.ToLower(strings.TrimSpace(in.Environment))
	in.Level = strings.ToLower(strings.TrimSpace(in.Level))
	in.Message = strings.TrimSpace(in.Message)
	return in
}

// Validate will run validation rules
func (in CreateLogInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.SenderApplication, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Environment, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.Level, validation.Required, validation.In(levelValues()...)),
		validation.Field(&in.Message, validation.Required, validation.Length(1, 10000)),
	)
}

func levelValues() []interface{} {
	values := make([]interface{}, 0, len(models.LogLevels))
	for _, l := range models.LogLevels {
		values = append(values, string(l))
	}
	return values
}

// normalizeFilter applies the same case folding as normalize so that
// filters match stored values
func normalizeFilter(f database.LogFilter) database.LogFilter {
	f.SenderApplication = strings.TrimSpace(f.SenderApplication)
	f.Environment = strings.ToLower(strings.TrimSpace(f.Environment))
	f.Level = strings.ToLower(strings.TrimSpace(f.Level))
	return f
}

// Query returns the caller's active logs matching filter.
// ErrEmptyResult is returned when nothing matches.
func (s *LogService) Query(ctx context.Context, userID uint, filter database.LogFilter) ([]models.Log, error) {
	filter = normalizeFilter(filter)
	logs, err := s.store.Find(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("logs queried", "user_id", userID, "filtered", !filter.IsEmpty(), "count", len(logs))
	if len(logs) == 0 {
		return nil, ErrEmptyResult
	}
	return logs, nil
}

// Create validates input and stores it as a new active log owned by userID
func (s *LogService) Create(ctx context.Context, userID uint, input CreateLogInput) (*models.Log, error) {
	input = input.normalize()
	if err := input.Validate(); err != nil {
		return nil, NewValidationError(err)
	}

	log := &models.Log{
		UserID:            userID,
		SenderApplication: input.SenderApplication,
		Environment:       input.Environment,
		Level:             input.Level,
		Message:           input.Message,
		Details:           input.Details,
	}
	if err := s.store.Create(ctx, log); err != nil {
		return nil, err
	}

	s.logger.Debug("log created", "user_id", userID, "log_id", log.ID)
	return log, nil
}

// SoftDelete hides one of the caller's active logs
func (s *LogService) SoftDelete(ctx context.Context, userID, id uint) error {
	n, err := s.store.SoftDelete(ctx, userID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLogNotFound
	}
	s.logger.Info("log soft-deleted", "user_id", userID, "log_id", id)
	return nil
}

// SoftDeleteAll hides every active log of the caller
func (s *LogService) SoftDeleteAll(ctx context.Context, userID uint) error {
	n, err := s.store.SoftDeleteAll(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNothingToDelete
	}
	s.logger.Info("logs soft-deleted", "user_id", userID, "count", n)
	return nil
}

// Restore makes one of the caller's soft-deleted logs active again
func (s *LogService) Restore(ctx context.Context, userID, id uint) error {
	n, err := s.store.Restore(ctx, userID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLogNotFound
	}
	s.logger.Info("log restored", "user_id", userID, "log_id", id)
	return nil
}

// RestoreAll makes every soft-deleted log of the caller active again
func (s *LogService) RestoreAll(ctx context.Context, userID uint) error {
	n, err := s.store.RestoreAll(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNothingToRestore
	}
	s.logger.Info("logs restored", "user_id", userID, "count", n)
	return nil
}

// Purge permanently removes one of the caller's logs, active or soft-deleted.
// This cannot be undone.
func (s *LogService) Purge(ctx context.Context, userID, id uint) error {
	n, err := s.store.HardDelete(ctx, userID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLogNotFound
	}
	s.logger.Warn("log purged", "user_id", userID, "log_id", id)
	return nil
}

// PurgeAll permanently removes every log of the caller
func (s *LogService) PurgeAll(ctx context.Context, userID uint) error {
	n, err := s.store.HardDeleteAll(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNothingToDelete
	}
	s.logger.Warn("logs purged", "user_id", userID, "count", n)
	return nil
}
