package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// folderTree builds A > B > C plus a separate root D and returns their ids.
func folderTree(t *testing.T, lib *Library) (a, b, c, d string) {
	t.Helper()
	fa, err := lib.Folders().Create("A", "")
	require.NoError(t, err)
	fb, err := lib.Folders().Create("B", fa.ID)
	require.NoError(t, err)
	fc, err := lib.Folders().Create("C", fb.ID)
	require.NoError(t, err)
	fd, err := lib.Folders().Create("D", "")
	require.NoError(t, err)
	return fa.ID, fb.ID, fc.ID, fd.ID
}

func folderIDs(t *testing.T, lib *Library) []string {
	t.Helper()
	folders, err := lib.Folders().List()
	require.NoError(t, err)
	ids := []string{}
	for _, f := range folders {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestFolders_Create(t *testing.T) {
	lib, _, log := newTestLibrary(t)

	root, err := lib.Folders().Create("  Invoices ", "")
	require.NoError(t, err)
	assert.NotEmpty(t, root.ID)
	assert.Equal(t, "Invoices", root.Name)
	assert.Nil(t, root.ParentID)

	child, err := lib.Folders().Create("2024", "does-not-exist")
	require.NoError(t, err, "dangling parents are accepted")
	assert.Equal(t, "does-not-exist", child.Parent())

	_, err = lib.Folders().Create(" ", "")
	assert.ErrorIs(t, err, types.ErrNameRequired)

	assert.Len(t, log.all(), 2)
}

func TestFolders_DeleteRemovesDirectChildren(t *testing.T) {
	lib, _, log := newTestLibrary(t)
	f1, err := lib.Folders().Create("A", "")
	require.NoError(t, err)
	f2, err := lib.Folders().Create("B", f1.ID)
	require.NoError(t, err)
	log.reset()

	require.NoError(t, lib.Folders().Delete(f1.ID))

	assert.NotContains(t, folderIDs(t, lib), f1.ID)
	assert.NotContains(t, folderIDs(t, lib), f2.ID)
	assert.Equal(t, []types.SignalKind{types.SignalDataChanged}, log.kinds())
}

func TestFolders_DeletePolicies(t *testing.T) {
	tests := []struct {
		policy string
		want   func(a, b, c, d string) []string
		check  func(t *testing.T, lib *Library, a, b, c, d string)
	}{
		{
			policy: types.FolderDeleteShallow,
			want:   func(a, b, c, d string) []string { return []string{c, d} },
			check: func(t *testing.T, lib *Library, a, b, c, d string) {
				report, err := lib.Check()
				require.NoError(t, err)
				require.Len(t, report.OrphanFolders, 1, "the grandchild is left with a dangling parent")
				assert.Equal(t, c, report.OrphanFolders[0].ID)
			},
		},
		{
			policy: types.FolderDeleteRecursive,
			want:   func(a, b, c, d string) []string { return []string{d} },
		},
		{
			policy: types.FolderDeleteReparent,
			want:   func(a, b, c, d string) []string { return []string{b, c, d} },
			check: func(t *testing.T, lib *Library, a, b, c, d string) {
				folders, err := lib.Folders().List()
				require.NoError(t, err)
				assert.Nil(t, folders[0].ParentID, "B moves up to the root")
				assert.Equal(t, b, folders[1].Parent(), "C keeps its parent")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			lib, _, _ := newTestLibrary(t, func(c *types.Config) { c.FolderDelete = tt.policy })
			a, b, c, d := folderTree(t, lib)

			require.NoError(t, lib.Folders().Delete(a))
			assert.Equal(t, tt.want(a, b, c, d), folderIDs(t, lib))
			if tt.check != nil {
				tt.check(t, lib, a, b, c, d)
			}
		})
	}
}

func TestFolders_ReparentUnderGrandparent(t *testing.T) {
	lib, _, _ := newTestLibrary(t, func(c *types.Config) { c.FolderDelete = types.FolderDeleteReparent })
	a, b, c, _ := folderTree(t, lib)

	require.NoError(t, lib.Folders().Delete(b))

	children, err := lib.Folders().Children(a)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, c, children[0].ID)
}

func TestFolders_DeleteUnknownIsNoop(t *testing.T) {
	for _, policy := range []string{types.FolderDeleteShallow, types.FolderDeleteRecursive, types.FolderDeleteReparent} {
		t.Run(policy, func(t *testing.T) {
			lib, _, log := newTestLibrary(t, func(c *types.Config) { c.FolderDelete = policy })
			folderTree(t, lib)
			before := folderIDs(t, lib)
			log.reset()

			require.NoError(t, lib.Folders().Delete("missing"))
			assert.Equal(t, before, folderIDs(t, lib))
			assert.Empty(t, log.all())
		})
	}
}

func TestFolders_Rename(t *testing.T) {
	lib, _, log := newTestLibrary(t)
	f, err := lib.Folders().Create("Old", "")
	require.NoError(t, err)
	log.reset()

	require.NoError(t, lib.Folders().Rename(f.ID, " New "))
	require.NoError(t, lib.Folders().Rename(f.ID, "New"))
	require.NoError(t, lib.Folders().Rename("missing", "Other"))
	assert.ErrorIs(t, lib.Folders().Rename(f.ID, ""), types.ErrNameRequired)

	folders, err := lib.Folders().List()
	require.NoError(t, err)
	assert.Equal(t, "New", folders[0].Name)
	assert.Len(t, log.all(), 1, "only the real rename publishes")
}
