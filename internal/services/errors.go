package services

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	// ErrValidation indicates the input does not have the expected shape
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates no matching record exists in the caller's scope
	ErrNotFound = errors.New("not found")
	// ErrEmptyResult indicates a query matched nothing. It is a signal, not a failure.
	ErrEmptyResult = errors.New("empty result")

	// ErrLogNotFound indicates the log does not exist for the caller
	ErrLogNotFound = wrapNotFound("log not found")
	// ErrNothingToDelete indicates the caller owns no deletable logs
	ErrNothingToDelete = wrapNotFound("there are no logs to delete")
	// ErrNothingToRestore indicates the caller owns no soft-deleted logs
	ErrNothingToRestore = wrapNotFound("there are no logs to restore")
	// ErrUserNotFound indicates the user was not found
	ErrUserNotFound = wrapNotFound("user not found")

	// ErrUserAlreadyExists indicates the email is already registered
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates the password does not match
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type notFoundError struct {
	msg string
}

func wrapNotFound(msg string) error { return &notFoundError{msg: msg} }

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Unwrap() error { return ErrNotFound }

// ValidationError carries per-field validation messages
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError converts an ozzo-validation result into a ValidationError.
// Non-field errors are reported under the "_" key.
func NewValidationError(err error) *ValidationError {
	fields := make(map[string]string)
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for k, v := range verrs {
			fields[k] = v.Error()
		}
	} else if err != nil {
		fields["_"] = err.Error()
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
