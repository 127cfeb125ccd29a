package kv

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports key files changed by anything other than this store.
// Changes whose content matches this store's own last write are ignored.
func (f *FileStore) Watch(ctx context.Context, fn func(key string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(f.dir); err != nil {
		return fmt.Errorf("watch %s: %w", f.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			key, ok := keyFromFile(filepath.Base(ev.Name))
			if !ok {
				continue
			}
			data, err := f.Read(key)
			if err != nil {
				continue
			}
			if f.ownWrite(key, data) {
				continue
			}
			fn(key)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", f.dir, err)
		}
	}
}
