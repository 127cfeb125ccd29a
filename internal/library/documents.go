package library

import (
	"slices"
	"strings"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// Documents is the repository for Document records and the tags embedded
// in them. Everything is persisted under the files key.
type Documents struct {
	lib *Library
}

// List returns every document in insertion order.
func (d *Documents) List() ([]types.Document, error) {
	l := d.lib
	if err := l.lock(); err != nil {
		return nil, err
	}
	defer l.mu.Unlock()

	docs, err := l.files.snapshot()
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i] = *docs[i].Clone()
	}
	return docs, nil
}

// Get returns the document with id or a *types.NotFoundError.
func (d *Documents) Get(id string) (*types.Document, error) {
	l := d.lib
	if err := l.lock(); err != nil {
		return nil, err
	}
	defer l.mu.Unlock()

	docs, err := l.files.snapshot()
	if err != nil {
		return nil, err
	}
	i := indexDocument(docs, id)
	if i < 0 {
		return nil, &types.NotFoundError{Kind: "document", ID: id}
	}
	return docs[i].Clone(), nil
}

// Create validates u and appends a new document with a fresh id. The
// rules are checked in order and the first failure is returned: title,
// file, type, size. Publishes file-added.
func (d *Documents) Create(u types.Upload) (*types.Document, error) {
	l := d.lib
	if err := l.lock(); err != nil {
		return nil, err
	}
	if err := l.policy.Check(u); err != nil {
		l.mu.Unlock()
		return nil, err
	}

	docs, err := l.files.fresh()
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}
	doc := types.NewDocument(newID(), u)
	if err := l.files.save(append(docs, *doc)); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	l.mu.Unlock()

	l.logger.Debug("document created", "id", doc.ID, "title", doc.Title, "type", doc.Type)
	l.notify(types.SignalFileAdded, types.CollectionFiles)
	return doc.Clone(), nil
}

// Delete removes the document and every access entry that references it.
// Deleting an unknown id does nothing. The document is removed first; if
// the access cascade then fails, the error is returned and the leftover
// entries are reported by Library.Check.
func (d *Documents) Delete(id string) error {
	l := d.lib
	if err := l.lock(); err != nil {
		return err
	}

	docs, err := l.files.fresh()
	if err != nil {
		l.mu.Unlock()
		return err
	}
	i := indexDocument(docs, id)
	if i < 0 {
		l.mu.Unlock()
		return nil
	}
	if err := l.files.save(slices.Delete(docs, i, i+1)); err != nil {
		l.mu.Unlock()
		return err
	}

	removed, err := l.revokeDocumentLocked(id)
	l.mu.Unlock()

	l.logger.Debug("document deleted", "id", id, "access_removed", removed)
	l.notify(types.SignalDataChanged, types.CollectionFiles)
	return err
}

// AddTag adds tag to the document's tag set. Adding a tag that is already
// present is a no-op. All tag operations trim their arguments.
func (d *Documents) AddTag(documentID, tag string) error {
	documentID = strings.TrimSpace(documentID)
	tag = strings.TrimSpace(tag)
	if documentID == "" {
		return types.NewValidationError("documentId", types.ErrDocumentIDRequired)
	}
	if tag == "" {
		return types.NewValidationError("tag", types.ErrTagRequired)
	}
	return d.updateTags(documentID, true, func(doc *types.Document) bool {
		return doc.AddTag(tag)
	})
}

// RemoveTag drops tag from the document. Unknown documents and absent
// tags are no-ops.
func (d *Documents) RemoveTag(documentID, tag string) error {
	documentID = strings.TrimSpace(documentID)
	tag = strings.TrimSpace(tag)
	return d.updateTags(documentID, false, func(doc *types.Document) bool {
		return doc.RemoveTag(tag)
	})
}

// RenameTag replaces oldTag with newTag. If newTag is already on the
// document the two merge into one. Unknown documents and absent tags are
// no-ops.
func (d *Documents) RenameTag(documentID, oldTag, newTag string) error {
	documentID = strings.TrimSpace(documentID)
	oldTag = strings.TrimSpace(oldTag)
	newTag = strings.TrimSpace(newTag)
	if newTag == "" {
		return types.NewValidationError("newTag", types.ErrTagRequired)
	}
	return d.updateTags(documentID, false, func(doc *types.Document) bool {
		return doc.RenameTag(oldTag, newTag)
	})
}

// updateTags applies fn to a copy of the document and persists it when fn
// reports a change. With mustExist, a missing document is a NotFoundError.
func (d *Documents) updateTags(documentID string, mustExist bool, fn func(*types.Document) bool) error {
	l := d.lib
	if err := l.lock(); err != nil {
		return err
	}

	docs, err := l.files.fresh()
	if err != nil {
		l.mu.Unlock()
		return err
	}
	i := indexDocument(docs, documentID)
	if i < 0 {
		l.mu.Unlock()
		if mustExist {
			return &types.NotFoundError{Kind: "document", ID: documentID}
		}
		return nil
	}

	doc := docs[i].Clone()
	if !fn(doc) {
		l.mu.Unlock()
		return nil
	}
	docs[i] = *doc
	if err := l.files.save(docs); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	l.logger.Debug("document tags updated", "id", documentID, "tags", doc.Tags)
	l.notify(types.SignalDataChanged, types.CollectionFiles)
	return nil
}

func indexDocument(docs []types.Document, id string) int {
	return slices.IndexFunc(docs, func(doc types.Document) bool { return doc.ID == id })
}
