package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

func TestAccess_AssignMissingDocument(t *testing.T) {
	lib, store, log := newTestLibrary(t)
	doc := mustCreate(t, lib, "Exists")
	require.NoError(t, lib.Access().Assign(doc.ID, "alice", types.PermissionView))
	log.reset()

	err := lib.Access().Assign("missing-id", "bob", types.PermissionView)
	require.ErrorIs(t, err, types.ErrNotFound)
	var nf *types.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing-id", nf.ID)

	assert.Equal(t, 1, rawLen(t, store, types.CollectionACL), "acl length unchanged")
	assert.Empty(t, log.all())
}

func TestAccess_AssignValidatesIDsFirst(t *testing.T) {
	lib, _, _ := newTestLibrary(t)

	assert.ErrorIs(t, lib.Access().Assign("", "bob", types.PermissionView), types.ErrDocumentIDRequired)
	assert.ErrorIs(t, lib.Access().Assign("missing", " ", types.PermissionView), types.ErrUserIDRequired)
}

func TestAccess_AssignReplacesByKey(t *testing.T) {
	lib, _, _ := newTestLibrary(t)
	doc := mustCreate(t, lib, "Shared")
	other := mustCreate(t, lib, "Other")

	require.NoError(t, lib.Access().Assign(doc.ID, "alice", types.PermissionView))
	require.NoError(t, lib.Access().Assign(other.ID, "alice", types.PermissionView))
	require.NoError(t, lib.Access().Assign(doc.ID, "bob", types.PermissionView))
	require.NoError(t, lib.Access().Assign(doc.ID, "alice", types.PermissionDownload))

	all, err := lib.Access().List()
	require.NoError(t, err)
	assert.Equal(t, []types.AccessEntry{
		{DocumentID: other.ID, UserID: "alice", Permission: types.PermissionView},
		{DocumentID: doc.ID, UserID: "bob", Permission: types.PermissionView},
		{DocumentID: doc.ID, UserID: "alice", Permission: types.PermissionDownload},
	}, all, "the replaced entry moves to the end")
}

func TestAccess_PermissionStorage(t *testing.T) {
	lib, _, _ := newTestLibrary(t)
	doc := mustCreate(t, lib, "Shared")

	require.NoError(t, lib.Access().Assign(doc.ID, "alice", ""))
	require.NoError(t, lib.Access().Assign(doc.ID, "bob", "owner"))
	require.NoError(t, lib.Access().Assign(doc.ID, "carol", "EDIT"))

	entries, err := lib.Access().ListForDocument(doc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, types.PermissionView, entries[0].Permission, "empty permission defaults to view")
	assert.Equal(t, types.Permission("owner"), entries[1].Permission, "unknown permissions are stored as given")
	assert.Equal(t, types.PermissionUnknown, entries[1].Permission.Category())
	assert.Equal(t, types.Permission("EDIT"), entries[2].Permission)
	assert.False(t, entries[2].Permission.Known())
	assert.Equal(t, types.PermissionUnknown, entries[2].Permission.Category(), "matching is exact")
}

func TestAccess_Revoke(t *testing.T) {
	lib, _, log := newTestLibrary(t)
	doc := mustCreate(t, lib, "Shared")
	require.NoError(t, lib.Access().Assign(doc.ID, "alice", types.PermissionEdit))
	require.NoError(t, lib.Access().Assign(doc.ID, "bob", types.PermissionEdit))
	log.reset()

	require.NoError(t, lib.Access().Revoke(doc.ID, "alice"))
	require.NoError(t, lib.Access().Revoke(doc.ID, "alice"))
	require.NoError(t, lib.Access().Revoke("missing", "bob"))

	entries, err := lib.Access().ListForDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.AccessEntry{
		{DocumentID: doc.ID, UserID: "bob", Permission: types.PermissionEdit},
	}, entries)
	assert.Len(t, log.all(), 1, "no-op revokes publish nothing")
}

func TestAccess_ListForUnknownDocumentIsEmpty(t *testing.T) {
	lib, _, _ := newTestLibrary(t)

	entries, err := lib.Access().ListForDocument("nothing")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
