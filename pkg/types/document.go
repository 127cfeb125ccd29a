package types

import (
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MIME types accepted for upload by default: PDF, Word and Excel documents.
const (
	MIMETypePDF  = "application/pdf"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DefaultAllowedTypes is the upload allow-list used when none is configured.
var DefaultAllowedTypes = []string{MIMETypePDF, MIMETypeDOCX, MIMETypeXLSX}

// DefaultMaxUploadSize is the document size ceiling (5 MiB).
const DefaultMaxUploadSize int64 = 5 << 20

// Document is a metadata record describing an uploaded file. The file
// content itself is never stored.
type Document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
}

// Validate checks the shape of a decoded record.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
	)
}

// Clone returns a deep copy so callers can mutate tags without touching
// a cached snapshot.
func (d *Document) Clone() *Document {
	c := *d
	c.Tags = slices.Clone(d.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c
}

// HasTag reports whether tag is present.
func (d *Document) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// AddTag appends tag unless it is already present. Reports whether the
// tag set changed.
func (d *Document) AddTag(tag string) bool {
	if d.HasTag(tag) {
		return false
	}
	d.Tags = append(d.Tags, tag)
	return true
}

// RemoveTag drops tag. Reports whether the tag set changed.
func (d *Document) RemoveTag(tag string) bool {
	i := slices.Index(d.Tags, tag)
	if i < 0 {
		return false
	}
	d.Tags = slices.Delete(d.Tags, i, i+1)
	return true
}

// RenameTag replaces oldTag with newTag in place. When newTag is already
// present the two merge: oldTag is dropped and newTag keeps its position.
// Reports whether the tag set changed.
func (d *Document) RenameTag(oldTag, newTag string) bool {
	i := slices.Index(d.Tags, oldTag)
	if i < 0 || oldTag == newTag {
		return false
	}
	if d.HasTag(newTag) {
		d.Tags = slices.Delete(d.Tags, i, i+1)
		return true
	}
	d.Tags[i] = newTag
	return true
}

// ParseTags splits a comma separated tag list. Entries are trimmed, empty
// entries dropped and duplicates collapsed, keeping the first occurrence.
func ParseTags(csv string) []string {
	tags := []string{}
	for part := range strings.SplitSeq(csv, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || slices.Contains(tags, tag) {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// Upload describes a file selected for upload.
type Upload struct {
	Title       string
	Description string
	Tags        string // comma separated
	Type        string // MIME type
	Name        string // original file name
	Size        int64  // bytes
}

// UploadPolicy holds the rules an Upload must satisfy.
type UploadPolicy struct {
	AllowedTypes []string
	MaxSize      int64
}

// DefaultUploadPolicy returns the PDF/Word/Excel, 5 MiB policy.
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		AllowedTypes: slices.Clone(DefaultAllowedTypes),
		MaxSize:      DefaultMaxUploadSize,
	}
}

// Check applies the rules in order and returns the first failure as a
// *ValidationError: title, file presence, type, size.
func (p UploadPolicy) Check(u Upload) error {
	if err := validation.Validate(strings.TrimSpace(u.Title), validation.Required); err != nil {
		return NewValidationError("title", ErrTitleRequired)
	}
	if err := validation.Validate(strings.TrimSpace(u.Name), validation.Required); err != nil {
		return NewValidationError("name", ErrFileRequired)
	}
	allowed := make([]any, len(p.AllowedTypes))
	for i, t := range p.AllowedTypes {
		allowed[i] = t
	}
	if err := validation.Validate(u.Type, validation.Required, validation.In(allowed...)); err != nil {
		return NewValidationError("type", ErrUnsupportedType)
	}
	if err := validation.Validate(u.Size, validation.Min(int64(0)), validation.Max(p.MaxSize)); err != nil {
		return NewValidationError("size", ErrFileTooLarge)
	}
	return nil
}

// NewDocument builds a Document from a validated upload.
func NewDocument(id string, u Upload) *Document {
	return &Document{
		ID:          id,
		Title:       strings.TrimSpace(u.Title),
		Description: strings.TrimSpace(u.Description),
		Tags:        ParseTags(u.Tags),
		Type:        u.Type,
		Name:        u.Name,
	}
}
