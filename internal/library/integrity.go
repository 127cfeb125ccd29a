package library

import (
	"slices"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// Report lists references that point at records which no longer exist.
// They arise when the store is edited by hand or by another process, or
// when a shallow folder delete leaves grandchildren behind.
type Report struct {
	DanglingAccess []types.AccessEntry // entries whose document is gone
	OrphanFolders  []types.Folder      // folders whose parent is gone
}

// Clean reports whether nothing dangles.
func (r Report) Clean() bool {
	return len(r.DanglingAccess) == 0 && len(r.OrphanFolders) == 0
}

// Check reads all three collections and reports dangling references.
func (l *Library) Check() (Report, error) {
	if err := l.lock(); err != nil {
		return Report{}, err
	}
	defer l.mu.Unlock()

	docs, err := l.files.fresh()
	if err != nil {
		return Report{}, err
	}
	entries, err := l.acl.fresh()
	if err != nil {
		return Report{}, err
	}
	folders, err := l.folders.fresh()
	if err != nil {
		return Report{}, err
	}

	report := Report{
		DanglingAccess: []types.AccessEntry{},
		OrphanFolders:  []types.Folder{},
	}
	for _, e := range entries {
		if indexDocument(docs, e.DocumentID) < 0 {
			report.DanglingAccess = append(report.DanglingAccess, e)
		}
	}
	for _, folder := range folders {
		if folder.ParentID == nil {
			continue
		}
		parent := *folder.ParentID
		if !slices.ContainsFunc(folders, func(p types.Folder) bool { return p.ID == parent }) {
			report.OrphanFolders = append(report.OrphanFolders, *folder.Clone())
		}
	}
	return report, nil
}

// Repair removes access entries whose document no longer exists and
// returns how many were removed. Orphan folders are left alone; they are
// valid roots-in-waiting under the shallow delete policy.
func (l *Library) Repair() (int, error) {
	if err := l.lock(); err != nil {
		return 0, err
	}

	docs, err := l.files.fresh()
	if err != nil {
		l.mu.Unlock()
		return 0, err
	}
	entries, err := l.acl.fresh()
	if err != nil {
		l.mu.Unlock()
		return 0, err
	}
	kept := slices.DeleteFunc(slices.Clone(entries), func(e types.AccessEntry) bool {
		return indexDocument(docs, e.DocumentID) < 0
	})
	removed := len(entries) - len(kept)
	if removed == 0 {
		l.mu.Unlock()
		return 0, nil
	}
	if err := l.acl.save(kept); err != nil {
		l.mu.Unlock()
		return 0, err
	}
	l.mu.Unlock()

	l.logger.Info("removed dangling access entries", "count", removed)
	l.notify(types.SignalDataChanged, types.CollectionACL)
	return removed, nil
}
