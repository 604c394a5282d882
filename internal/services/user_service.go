package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/logstore/core/internal/database/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// MinPasswordLength is the shortest accepted password
	MinPasswordLength = 6
	// MaxPasswordLength is the bcrypt input limit
	MaxPasswordLength = 72
)

// ErrAccountNotDeleted indicates a restore was requested for an active account
var ErrAccountNotDeleted = wrapNotFound("no deleted account to restore")

// UserService handles user-related business logic
type UserService struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		db:     db,
		logger: logger.With("source", "users"),
	}
}

// NewUserInput is the data needed to register a user
type NewUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate will run validation rules
func (in NewUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(MinPasswordLength, MaxPasswordLength)),
		validation.Field(&in.Name, validation.Length(0, 100)),
	)
}

// CreateUser creates a new user with a hashed password
func (s *UserService) CreateUser(ctx context.Context, input NewUserInput) (*models.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := input.Validate(); err != nil {
		return nil, NewValidationError(err)
	}

	// Tombstoned accounts still hold their email
	var count int64
	if err := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).
		Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	newUser := &models.User{
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Name:         input.Name,
	}
	if err := s.db.WithContext(ctx).Create(newUser).Error; err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", newUser.ID)
	return newUser, nil
}

// GetUserByID retrieves an active user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var foundUser models.User
	if err := s.db.WithContext(ctx).First(&foundUser, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &foundUser, nil
}

// GetUserByEmail retrieves an active user by email
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findByEmail(s.db.WithContext(ctx), email)
}

// GetUserByEmailIncludingDeleted retrieves a user by email, soft-deleted or not
func (s *UserService) GetUserByEmailIncludingDeleted(ctx context.Context, email string) (*models.User, error) {
	return s.findByEmail(s.db.WithContext(ctx).Unscoped(), email)
}

func (s *UserService) findByEmail(db *gorm.DB, email string) (*models.User, error) {
	var foundUser models.User
	if err := db.Where("email = ?", normalizeEmail(email)).First(&foundUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &foundUser, nil
}

// ListUsers returns all active users
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// VerifyCredentials checks email and password against active users.
// It returns ErrUserNotFound for an unknown email and ErrInvalidCredentials
// for a wrong password.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	foundUser, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return checkPassword(foundUser, password)
}

// VerifyCredentialsIncludingDeleted is VerifyCredentials for the account
// restore flow, where the user may be soft-deleted
func (s *UserService) VerifyCredentialsIncludingDeleted(ctx context.Context, email, password string) (*models.User, error) {
	foundUser, err := s.GetUserByEmailIncludingDeleted(ctx, email)
	if err != nil {
		return nil, err
	}
	return checkPassword(foundUser, password)
}

func checkPassword(u *models.User, password string) (*models.User, error) {
	if !ComparePassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// DeleteUser soft-deletes an account. Its logs are left untouched.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	s.logger.Info("user soft-deleted", "user_id", id)
	return nil
}

// RestoreUser clears the tombstone of a soft-deleted account
func (s *UserService) RestoreUser(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Unscoped().
		Model(&models.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		UpdateColumn("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotDeleted
	}
	s.logger.Info("user restored", "user_id", id)
	return nil
}

// ResetPassword resets a user's password (admin operation)
func (s *UserService) ResetPassword(ctx context.Context, id uint, newPassword string) error {
	if err := validation.Validate(newPassword,
		validation.Required,
		validation.Length(MinPasswordLength, MaxPasswordLength),
	); err != nil {
		return &ValidationError{Fields: map[string]string{"password": err.Error()}}
	}

	foundUser, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(foundUser).Update("password_hash", hashedPassword).Error
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// ComparePassword compares a password with a hash
func ComparePassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
