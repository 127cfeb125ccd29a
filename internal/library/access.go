package library

import (
	"slices"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// Access is the repository for AccessEntry records, persisted under the
// acl key. It checks document references when an entry is assigned; it
// does not keep checking them afterwards (see Library.Check).
type Access struct {
	lib *Library
}

// List returns every entry in insertion order.
func (a *Access) List() ([]types.AccessEntry, error) {
	l := a.lib
	if err := l.lock(); err != nil {
		return nil, err
	}
	defer l.mu.Unlock()
	return l.acl.snapshot()
}

// ListForDocument returns the entries for documentID in insertion order.
func (a *Access) ListForDocument(documentID string) ([]types.AccessEntry, error) {
	entries, err := a.List()
	if err != nil {
		return nil, err
	}
	out := []types.AccessEntry{}
	for _, e := range entries {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Assign grants userID permission on documentID. Both ids are required and
// the document must exist. An existing entry for the same pair is removed
// and the new one appended, so the pair always has exactly one entry.
// The permission is stored as given; an empty one means view.
func (a *Access) Assign(documentID, userID string, permission types.Permission) error {
	entry, err := types.NewAccessEntry(documentID, userID, permission)
	if err != nil {
		return err
	}

	l := a.lib
	if err := l.lock(); err != nil {
		return err
	}

	docs, err := l.files.fresh()
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if indexDocument(docs, entry.DocumentID) < 0 {
		l.mu.Unlock()
		return &types.NotFoundError{Kind: "document", ID: entry.DocumentID}
	}

	entries, err := l.acl.fresh()
	if err != nil {
		l.mu.Unlock()
		return err
	}
	entries = slices.DeleteFunc(entries, func(e types.AccessEntry) bool {
		return e.Matches(entry.DocumentID, entry.UserID)
	})
	if err := l.acl.save(append(entries, *entry)); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	if !entry.Permission.Known() {
		l.logger.Warn("stored unrecognised permission",
			"document", entry.DocumentID, "user", entry.UserID, "permission", entry.Permission)
	}
	l.logger.Debug("access assigned",
		"document", entry.DocumentID, "user", entry.UserID, "permission", entry.Permission)
	l.notify(types.SignalDataChanged, types.CollectionACL)
	return nil
}

// Revoke removes the entry for (documentID, userID). Absent entries are
// a no-op.
func (a *Access) Revoke(documentID, userID string) error {
	l := a.lib
	if err := l.lock(); err != nil {
		return err
	}

	entries, err := l.acl.fresh()
	if err != nil {
		l.mu.Unlock()
		return err
	}
	kept := slices.DeleteFunc(slices.Clone(entries), func(e types.AccessEntry) bool {
		return e.Matches(documentID, userID)
	})
	if len(kept) == len(entries) {
		l.mu.Unlock()
		return nil
	}
	if err := l.acl.save(kept); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	l.logger.Debug("access revoked", "document", documentID, "user", userID)
	l.notify(types.SignalDataChanged, types.CollectionACL)
	return nil
}

// revokeDocumentLocked removes every entry for documentID and returns how
// many were removed. The caller holds l.mu.
func (l *Library) revokeDocumentLocked(documentID string) (int, error) {
	entries, err := l.acl.fresh()
	if err != nil {
		return 0, err
	}
	kept := slices.DeleteFunc(slices.Clone(entries), func(e types.AccessEntry) bool {
		return e.DocumentID == documentID
	})
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := l.acl.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}
