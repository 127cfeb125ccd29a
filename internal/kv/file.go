package kv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

const fileExt = ".json"

// FileStore keeps one <key>.json file per key in a directory. Writes go
// through a temp file, fsync and rename, so a reader never sees a partial
// value and a failed write leaves the old file in place.
type FileStore struct {
	dir   string
	quota int64

	mu   sync.Mutex
	last map[string][]byte // last value this store wrote, per key
}

// OpenFileStore creates dir if needed and returns a store rooted there.
func OpenFileStore(dir string, quota int64) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, quota: quota, last: make(map[string][]byte)}, nil
}

// Dir returns the directory the store writes to.
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

func (f *FileStore) Read(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (f *FileStore) Write(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.quota > 0 {
		used, err := f.usage(key)
		if err != nil {
			return err
		}
		oldSize, err := f.entrySize(key)
		if err != nil {
			return err
		}
		size := entrySize(key, value)
		need := used + size
		if exceeds(f.quota, need, oldSize, size) {
			return fullError(key, need, f.quota)
		}
	}
	if err := writeAtomic(f.path(key), value); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	f.last[key] = slices.Clone(value)
	return nil
}

func (f *FileStore) Usage() (int64, error) {
	return f.usage("")
}

// usage sums the cost of every key file except skip.
func (f *FileStore) usage(skip string) (int64, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, fmt.Errorf("list data dir: %w", err)
	}
	var n int64
	for _, e := range entries {
		key, ok := keyFromFile(e.Name())
		if !ok || key == skip || e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		n += int64(len(key)) + info.Size()
	}
	return n, nil
}

// entrySize returns what the current file for key costs, or zero when
// there is none.
func (f *FileStore) entrySize(key string) (int64, error) {
	info, err := os.Stat(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", key, err)
	}
	return int64(len(key)) + info.Size(), nil
}

func (f *FileStore) Close() error { return nil }

// ownWrite reports whether data is what this store last wrote at key.
func (f *FileStore) ownWrite(key string, data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	last, ok := f.last[key]
	return ok && bytes.Equal(last, data)
}

// keyFromFile maps a file name back to its key.
func keyFromFile(name string) (string, bool) {
	key, ok := strings.CutSuffix(name, fileExt)
	if !ok || checkKey(key) != nil {
		return "", false
	}
	return key, true
}

// writeAtomic writes data to path using the temp-file, fsync, rename
// pattern.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".kv-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing value: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
