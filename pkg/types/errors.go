package types

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by a repository operation matches
// exactly one of these with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStoreFull  = errors.New("store capacity exceeded")
)

// Validation rules. A ValidationError wraps ErrValidation and one of these.
var (
	ErrTitleRequired      = errors.New("title is required")
	ErrFileRequired       = errors.New("a file must be selected")
	ErrUnsupportedType    = errors.New("unsupported file type")
	ErrFileTooLarge       = errors.New("file too large")
	ErrNameRequired       = errors.New("name is required")
	ErrTagRequired        = errors.New("tag is required")
	ErrDocumentIDRequired = errors.New("document id is required")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrIDRequired         = errors.New("id is required")
)

// Lifecycle and plumbing errors.
var (
	ErrLibraryDetached = errors.New("library is detached")
	ErrAlreadyAttached = errors.New("library is already attached")
	ErrInvalidKey      = errors.New("invalid store key")
	ErrSignalStorm     = errors.New("signal cascade limit reached")
)

// ValidationError reports malformed or missing input. Field names the input
// that failed; Err is the rule sentinel.
type ValidationError struct {
	Field string
	Err   error
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap lets errors.Is match both ErrValidation and the rule sentinel.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Kind string // "document", "folder"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q does not exist", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsUserError reports whether err is recoverable by corrected input
// (validation or a missing reference) rather than a storage failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound)
}
