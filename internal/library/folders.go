package library

import (
	"slices"
	"strings"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// Folders is the repository for Folder records, persisted under the
// folders key. Parent references are not validated and cycles are not
// detected; callers must not build them.
type Folders struct {
	lib *Library
}

// List returns every folder in insertion order.
func (f *Folders) List() ([]types.Folder, error) {
	l := f.lib
	if err := l.lock(); err != nil {
		return nil, err
	}
	defer l.mu.Unlock()

	folders, err := l.folders.snapshot()
	if err != nil {
		return nil, err
	}
	for i := range folders {
		folders[i] = *folders[i].Clone()
	}
	return folders, nil
}

// Children returns the direct children of id in insertion order.
func (f *Folders) Children(id string) ([]types.Folder, error) {
	folders, err := f.List()
	if err != nil {
		return nil, err
	}
	out := []types.Folder{}
	for _, folder := range folders {
		if folder.IsChildOf(id) {
			out = append(out, folder)
		}
	}
	return out, nil
}

// Create appends a folder named name under parentID (empty for a root).
// parentID is stored even if no such folder exists.
func (f *Folders) Create(name, parentID string) (*types.Folder, error) {
	folder, err := types.NewFolder(newID(), name, parentID)
	if err != nil {
		return nil, err
	}

	l := f.lib
	if err := l.lock(); err != nil {
		return nil, err
	}
	folders, err := l.folders.fresh()
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}
	if err := l.folders.save(append(folders, *folder)); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	l.mu.Unlock()

	l.logger.Debug("folder created", "id", folder.ID, "name", folder.Name, "parent", folder.Parent())
	l.notify(types.SignalDataChanged, types.CollectionFolders)
	return folder.Clone(), nil
}

// Rename sets the name of folder id. An unknown id is a no-op.
func (f *Folders) Rename(id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return types.NewValidationError("name", types.ErrNameRequired)
	}

	l := f.lib
	if err := l.lock(); err != nil {
		return err
	}
	folders, err := l.folders.fresh()
	if err != nil {
		l.mu.Unlock()
		return err
	}
	i := slices.IndexFunc(folders, func(folder types.Folder) bool { return folder.ID == id })
	if i < 0 || folders[i].Name == newName {
		l.mu.Unlock()
		return nil
	}
	folders[i] = *folders[i].Clone()
	folders[i].Name = newName
	if err := l.folders.save(folders); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	l.logger.Debug("folder renamed", "id", id, "name", newName)
	l.notify(types.SignalDataChanged, types.CollectionFolders)
	return nil
}

// Delete removes folder id according to the configured policy:
//
//   - shallow: id and its direct children; grandchildren keep a dangling
//     parent reference.
//   - recursive: id and every descendant.
//   - reparent: id only; its children move to id's parent.
//
// Nothing is written when nothing matches.
func (f *Folders) Delete(id string) error {
	l := f.lib
	if err := l.lock(); err != nil {
		return err
	}
	folders, err := l.folders.fresh()
	if err != nil {
		l.mu.Unlock()
		return err
	}

	var kept []types.Folder
	switch l.config.FolderDelete {
	case types.FolderDeleteRecursive:
		kept = deleteRecursive(folders, id)
	case types.FolderDeleteReparent:
		kept = deleteReparent(folders, id)
	default:
		kept = deleteShallow(folders, id)
	}
	if slices.EqualFunc(kept, folders, foldersEqual) {
		l.mu.Unlock()
		return nil
	}
	if err := l.folders.save(kept); err != nil {
		l.mu.Unlock()
		return err
	}
	policy := l.config.FolderDelete
	l.mu.Unlock()

	l.logger.Debug("folder deleted", "id", id, "policy", policy, "removed", len(folders)-len(kept))
	l.notify(types.SignalDataChanged, types.CollectionFolders)
	return nil
}

func deleteShallow(folders []types.Folder, id string) []types.Folder {
	kept := []types.Folder{}
	for _, folder := range folders {
		if folder.ID == id || folder.IsChildOf(id) {
			continue
		}
		kept = append(kept, folder)
	}
	return kept
}

func deleteRecursive(folders []types.Folder, id string) []types.Folder {
	doomed := map[string]bool{id: true}
	// Sweep until no new descendant is found; the visited set keeps a
	// malformed cycle from looping forever.
	for changed := true; changed; {
		changed = false
		for _, folder := range folders {
			if !doomed[folder.ID] && folder.ParentID != nil && doomed[*folder.ParentID] {
				doomed[folder.ID] = true
				changed = true
			}
		}
	}
	kept := []types.Folder{}
	for _, folder := range folders {
		if !doomed[folder.ID] {
			kept = append(kept, folder)
		}
	}
	return kept
}

func deleteReparent(folders []types.Folder, id string) []types.Folder {
	i := slices.IndexFunc(folders, func(folder types.Folder) bool { return folder.ID == id })
	if i < 0 {
		return folders
	}
	grandparent := folders[i].Clone().ParentID
	kept := []types.Folder{}
	for _, folder := range folders {
		switch {
		case folder.ID == id:
			continue
		case folder.IsChildOf(id):
			moved := folder.Clone()
			moved.ParentID = nil
			if grandparent != nil {
				p := *grandparent
				moved.ParentID = &p
			}
			kept = append(kept, *moved)
		default:
			kept = append(kept, folder)
		}
	}
	return kept
}

func foldersEqual(a, b types.Folder) bool {
	return a.ID == b.ID && a.Name == b.Name && a.Parent() == b.Parent() &&
		(a.ParentID == nil) == (b.ParentID == nil)
}
