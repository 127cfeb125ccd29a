package types

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Permission is the level of access an AccessEntry grants.
type Permission string

// Known permissions.
const (
	PermissionView     Permission = "view"
	PermissionEdit     Permission = "edit"
	PermissionDownload Permission = "download"
)

// PermissionUnknown is the display category for values outside the enum.
const PermissionUnknown = "unknown"

// Known reports whether p is one of view, edit, download.
func (p Permission) Known() bool {
	switch p {
	case PermissionView, PermissionEdit, PermissionDownload:
		return true
	}
	return false
}

// Category returns the display category for p. Stored values are not
// checked against the enum, so anything Known rejects, including a
// differently cased "EDIT", renders as "unknown".
func (p Permission) Category() string {
	if p.Known() {
		return string(p)
	}
	return PermissionUnknown
}

// AccessEntry grants one user a permission on one document. The pair
// (DocumentID, UserID) is the key; at most one entry exists per pair.
type AccessEntry struct {
	DocumentID string     `json:"documentId"`
	UserID     string     `json:"userId"`
	Permission Permission `json:"permission"`
}

// NewAccessEntry builds an entry from user input. An empty permission
// defaults to view; other values are stored as given.
func NewAccessEntry(documentID, userID string, permission Permission) (*AccessEntry, error) {
	documentID = strings.TrimSpace(documentID)
	userID = strings.TrimSpace(userID)
	if err := validation.Validate(documentID, validation.Required); err != nil {
		return nil, NewValidationError("documentId", ErrDocumentIDRequired)
	}
	if err := validation.Validate(userID, validation.Required); err != nil {
		return nil, NewValidationError("userId", ErrUserIDRequired)
	}
	if permission == "" {
		permission = PermissionView
	}
	return &AccessEntry{DocumentID: documentID, UserID: userID, Permission: permission}, nil
}

// Validate checks the shape of a decoded record.
func (a AccessEntry) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.DocumentID, validation.Required),
		validation.Field(&a.UserID, validation.Required),
	)
}

// Matches reports whether a has the key (documentID, userID).
func (a *AccessEntry) Matches(documentID, userID string) bool {
	return a.DocumentID == documentID && a.UserID == userID
}
