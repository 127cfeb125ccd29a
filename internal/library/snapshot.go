package library

import "github.com/mesh-intelligence/docshelf/pkg/types"

// Snapshot is a copy of all three collections taken under one lock.
type Snapshot struct {
	Documents []types.Document
	Folders   []types.Folder
	Access    []types.AccessEntry
}

// AccessFor returns the entries for documentID in insertion order.
func (s Snapshot) AccessFor(documentID string) []types.AccessEntry {
	out := []types.AccessEntry{}
	for _, e := range s.Access {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot reads every collection.
func (l *Library) Snapshot() (Snapshot, error) {
	if err := l.lock(); err != nil {
		return Snapshot{}, err
	}
	defer l.mu.Unlock()

	docs, err := l.files.snapshot()
	if err != nil {
		return Snapshot{}, err
	}
	for i := range docs {
		docs[i] = *docs[i].Clone()
	}
	folders, err := l.folders.snapshot()
	if err != nil {
		return Snapshot{}, err
	}
	for i := range folders {
		folders[i] = *folders[i].Clone()
	}
	entries, err := l.acl.snapshot()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Documents: docs, Folders: folders, Access: entries}, nil
}
