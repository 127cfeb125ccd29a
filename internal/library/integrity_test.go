package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

func TestLibrary_CheckAndRepair(t *testing.T) {
	lib, store, log := newTestLibrary(t)
	doc := mustCreate(t, lib, "Live")
	require.NoError(t, lib.Access().Assign(doc.ID, "alice", types.PermissionEdit))

	report, err := lib.Check()
	require.NoError(t, err)
	assert.True(t, report.Clean())

	// Another writer leaves an entry pointing at a document that is gone.
	raw := `[{"documentId":"` + doc.ID + `","userId":"alice","permission":"edit"},` +
		`{"documentId":"gone","userId":"bob","permission":"view"}]`
	require.NoError(t, store.Write(types.CollectionACL, []byte(raw)))

	report, err = lib.Check()
	require.NoError(t, err)
	assert.False(t, report.Clean())
	require.Len(t, report.DanglingAccess, 1)
	assert.Equal(t, "gone", report.DanglingAccess[0].DocumentID)
	log.reset()

	removed, err := lib.Repair()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []types.SignalKind{types.SignalDataChanged}, log.kinds())

	removed, err = lib.Repair()
	require.NoError(t, err)
	assert.Zero(t, removed)

	report, err = lib.Check()
	require.NoError(t, err)
	assert.True(t, report.Clean())
	entries, err := lib.Access().List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSnapshot_AccessFor(t *testing.T) {
	lib, _, _ := newTestLibrary(t)
	a := mustCreate(t, lib, "A")
	b := mustCreate(t, lib, "B")
	require.NoError(t, lib.Access().Assign(a.ID, "alice", types.PermissionView))
	require.NoError(t, lib.Access().Assign(b.ID, "bob", types.PermissionEdit))
	require.NoError(t, lib.Access().Assign(a.ID, "carol", types.PermissionDownload))

	snap, err := lib.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Documents, 2)
	assert.Empty(t, snap.Folders)

	users := []string{}
	for _, e := range snap.AccessFor(a.ID) {
		users = append(users, e.UserID)
	}
	assert.Equal(t, []string{"alice", "carol"}, users)
	assert.Empty(t, snap.AccessFor("none"))
}
