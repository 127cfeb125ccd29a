package kv

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

func TestSQLiteStore_CreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSQLiteStore(dir, 0, time.Second)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, DatabaseFile))
	assert.NoError(t, err)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSQLiteStore(dir, 0, time.Second)
	require.NoError(t, err)
	require.NoError(t, s.Write(types.CollectionFiles, []byte(`[{"id":"a"}]`)))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	s, err = OpenSQLiteStore(dir, 0, time.Second)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Read(types.CollectionFiles)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))
}

func TestSQLiteStore_WatchReportsOtherConnections(t *testing.T) {
	dir := t.TempDir()
	mine, err := OpenSQLiteStore(dir, 0, 10*time.Millisecond)
	require.NoError(t, err)
	defer mine.Close()
	other, err := OpenSQLiteStore(dir, 0, 10*time.Millisecond)
	require.NoError(t, err)
	defer other.Close()

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- mine.Watch(ctx, func(key string) {
			assert.Empty(t, key)
			calls.Add(1)
		})
	}()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, mine.Write(types.CollectionACL, []byte("[]")))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load(), "own commits must not be reported")

	require.NoError(t, other.Write(types.CollectionACL, []byte(`[{"documentId":"d","userId":"u"}]`)))
	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
}
