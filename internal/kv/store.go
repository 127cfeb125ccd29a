// Package kv implements the persistent key/value stores behind the
// docshelf repositories: an in-memory store, a directory of JSON files and
// a SQLite database. Every store enforces a capacity ceiling and leaves the
// previous value untouched when a write is rejected.
package kv

import (
	"context"
	"fmt"
	"regexp"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// Store is a synchronous byte store addressed by string keys.
type Store interface {
	// Read returns the value at key, or nil when the key is absent.
	Read(key string) ([]byte, error)

	// Write replaces the value at key. It returns types.ErrStoreFull when
	// the write grows the key and would exceed the capacity ceiling; the
	// previous value is then left as it was. Writes that shrink or keep
	// the size of a key always succeed.
	Write(key string, value []byte) error

	// Usage returns the number of bytes counted against the ceiling.
	Usage() (int64, error)

	// Close releases the store. It is safe to call more than once.
	Close() error
}

// Watcher is implemented by stores that can observe writes made by other
// processes. Watch blocks until ctx is done, calling fn from its own
// goroutine for each external change. key is empty when the store cannot
// tell which key changed.
type Watcher interface {
	Watch(ctx context.Context, fn func(key string)) error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", types.ErrInvalidKey, key)
	}
	return nil
}

// entrySize is what one key/value pair costs against the ceiling.
func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}

// exceeds reports whether a write that brings usage to need must be
// rejected. A write that does not grow its key is always allowed, so an
// over-full store can still be shrunk.
func exceeds(quota, need, oldSize, newSize int64) bool {
	return quota > 0 && need > quota && newSize > oldSize
}

func fullError(key string, need, quota int64) error {
	return fmt.Errorf("write %s: %w (%d of %d bytes)", key, types.ErrStoreFull, need, quota)
}

// Open creates the store selected by cfg. cfg must already be normalized
// and validated.
func Open(cfg types.Config) (Store, error) {
	switch cfg.Backend {
	case types.BackendMemory:
		return NewMemoryStore(cfg.QuotaBytes()), nil
	case types.BackendFile:
		return OpenFileStore(cfg.DataDir, cfg.QuotaBytes())
	case types.BackendSQLite:
		return OpenSQLiteStore(cfg.DataDir, cfg.QuotaBytes(), cfg.WatchInterval)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}
