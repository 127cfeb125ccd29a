package kv

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

func TestFileStore_OneFilePerKey(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFileStore(dir, 0)
	require.NoError(t, err)

	require.NoError(t, s.Write(types.CollectionFiles, []byte("[]")))

	data, err := os.ReadFile(filepath.Join(dir, "files.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}

func TestFileStore_UsageIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	s, err := OpenFileStore(dir, 0)
	require.NoError(t, err)
	require.NoError(t, s.Write(types.CollectionACL, []byte("[]")))

	used, err := s.Usage()
	require.NoError(t, err)
	assert.Equal(t, int64(len("acl")+2), used)
}

// recorder collects keys reported by a watcher.
type recorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *recorder) add(key string) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

func TestFileStore_WatchReportsOtherWriters(t *testing.T) {
	dir := t.TempDir()
	mine, err := OpenFileStore(dir, 0)
	require.NoError(t, err)
	other, err := OpenFileStore(dir, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	done := make(chan error, 1)
	go func() { done <- mine.Watch(ctx, rec.add) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, mine.Write(types.CollectionFiles, []byte(`["mine"]`)))
	require.NoError(t, other.Write(types.CollectionFolders, []byte(`["theirs"]`)))

	assert.Eventually(t, func() bool {
		for _, k := range rec.snapshot() {
			if k == types.CollectionFolders {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, rec.snapshot(), types.CollectionFiles, "own writes must not be reported")
}
