package types

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Folder is a named node in an optional hierarchy. ParentID is nil for
// roots. Parent references are not checked, so a folder may point at a
// parent that no longer exists.
type Folder struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// NewFolder builds a Folder. An empty or blank parentID makes a root.
func NewFolder(id, name, parentID string) (*Folder, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required); err != nil {
		return nil, NewValidationError("name", ErrNameRequired)
	}
	f := &Folder{ID: id, Name: name}
	if p := strings.TrimSpace(parentID); p != "" {
		f.ParentID = &p
	}
	return f, nil
}

// Validate checks the shape of a decoded record.
func (f Folder) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Required),
	)
}

// Parent returns the parent id, or "" for a root.
func (f *Folder) Parent() string {
	if f.ParentID == nil {
		return ""
	}
	return *f.ParentID
}

// IsChildOf reports whether f's direct parent is id.
func (f *Folder) IsChildOf(id string) bool {
	return f.ParentID != nil && *f.ParentID == id
}

// Clone returns a copy that does not share the parent pointer.
func (f *Folder) Clone() *Folder {
	c := *f
	if f.ParentID != nil {
		p := *f.ParentID
		c.ParentID = &p
	}
	return &c
}
