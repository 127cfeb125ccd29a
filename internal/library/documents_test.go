package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

func TestDocuments_CreateAndAssign(t *testing.T) {
	lib, _, log := newTestLibrary(t)

	doc, err := lib.Documents().Create(types.Upload{
		Title: "Spec",
		Type:  types.MIMETypePDF,
		Name:  "s.pdf",
		Size:  2 << 20,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "s.pdf", doc.Name)

	require.NoError(t, lib.Access().Assign(doc.ID, "alice", types.PermissionEdit))

	entries, err := lib.Access().ListForDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.AccessEntry{
		{DocumentID: doc.ID, UserID: "alice", Permission: types.PermissionEdit},
	}, entries)
	assert.Equal(t, []types.SignalKind{types.SignalFileAdded, types.SignalDataChanged}, log.kinds())
}

func TestDocuments_CreateRejectsInvalidUpload(t *testing.T) {
	tests := []struct {
		name    string
		upload  types.Upload
		wantErr error
	}{
		{
			name:    "disallowed type",
			upload:  types.Upload{Title: "Pic", Type: "image/png", Name: "p.png", Size: 10},
			wantErr: types.ErrUnsupportedType,
		},
		{
			name:    "empty title",
			upload:  types.Upload{Title: "", Type: types.MIMETypePDF, Name: "a.pdf", Size: 10},
			wantErr: types.ErrTitleRequired,
		},
		{
			name:    "no file",
			upload:  types.Upload{Title: "T", Type: types.MIMETypePDF, Size: 10},
			wantErr: types.ErrFileRequired,
		},
		{
			name:    "over 5 MiB",
			upload:  types.Upload{Title: "Big", Type: types.MIMETypeXLSX, Name: "b.xlsx", Size: 5<<20 + 1},
			wantErr: types.ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, store, log := newTestLibrary(t)
			mustCreate(t, lib, "Existing")
			log.reset()

			_, err := lib.Documents().Create(tt.upload)
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, types.ErrValidation)

			assert.Equal(t, 1, rawLen(t, store, types.CollectionFiles), "files length unchanged")
			assert.Empty(t, log.all())
		})
	}
}

func TestDocuments_UploadPolicyFromConfig(t *testing.T) {
	lib, _, _ := newTestLibrary(t, func(c *types.Config) {
		c.MaxUploadSize = "1KiB"
		c.AllowedTypes = []string{"text/plain"}
	})

	_, err := lib.Documents().Create(types.Upload{Title: "Notes", Type: "text/plain", Name: "n.txt", Size: 1024})
	require.NoError(t, err)

	_, err = lib.Documents().Create(types.Upload{Title: "Notes", Type: "text/plain", Name: "n.txt", Size: 1025})
	assert.ErrorIs(t, err, types.ErrFileTooLarge)

	_, err = lib.Documents().Create(pdfUpload("Report"))
	assert.ErrorIs(t, err, types.ErrUnsupportedType)
}

func TestDocuments_ListKeepsCallOrder(t *testing.T) {
	lib, _, _ := newTestLibrary(t)

	a := mustCreate(t, lib, "A")
	b := mustCreate(t, lib, "B")
	c := mustCreate(t, lib, "C")
	require.NoError(t, lib.Documents().Delete(b.ID))
	d := mustCreate(t, lib, "D")

	docs, err := lib.Documents().List()
	require.NoError(t, err)
	var ids []string
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	assert.Equal(t, []string{a.ID, c.ID, d.ID}, ids)
}

func TestDocuments_DeleteCascadesToAccess(t *testing.T) {
	lib, _, log := newTestLibrary(t)
	keep := mustCreate(t, lib, "Keep")
	drop := mustCreate(t, lib, "Drop")
	require.NoError(t, lib.Access().Assign(drop.ID, "alice", types.PermissionView))
	require.NoError(t, lib.Access().Assign(keep.ID, "alice", types.PermissionEdit))
	require.NoError(t, lib.Access().Assign(drop.ID, "bob", types.PermissionDownload))
	log.reset()

	require.NoError(t, lib.Documents().Delete(drop.ID))

	entries, err := lib.Access().ListForDocument(drop.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	all, err := lib.Access().List()
	require.NoError(t, err)
	assert.Equal(t, []types.AccessEntry{
		{DocumentID: keep.ID, UserID: "alice", Permission: types.PermissionEdit},
	}, all)

	_, err = lib.Documents().Get(drop.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, []types.SignalKind{types.SignalDataChanged}, log.kinds())
}

func TestDocuments_DeleteUnknownIsNoop(t *testing.T) {
	lib, _, log := newTestLibrary(t)
	mustCreate(t, lib, "Only")
	log.reset()

	require.NoError(t, lib.Documents().Delete("missing"))
	docs, err := lib.Documents().List()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Empty(t, log.all())
}

func TestDocuments_AddTag(t *testing.T) {
	lib, _, log := newTestLibrary(t)
	doc := mustCreate(t, lib, "Tagged")
	log.reset()

	require.NoError(t, lib.Documents().AddTag(doc.ID, "x"))
	require.NoError(t, lib.Documents().AddTag(doc.ID, "  x "))
	require.NoError(t, lib.Documents().AddTag(doc.ID, "y"))

	got, err := lib.Documents().Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got.Tags)
	assert.Len(t, log.all(), 2, "re-adding an existing tag publishes nothing")
}

func TestDocuments_AddTagErrors(t *testing.T) {
	lib, _, log := newTestLibrary(t)
	doc := mustCreate(t, lib, "Tagged")
	log.reset()

	err := lib.Documents().AddTag("missing", "x")
	assert.ErrorIs(t, err, types.ErrNotFound)

	err = lib.Documents().AddTag(doc.ID, "   ")
	assert.ErrorIs(t, err, types.ErrTagRequired)

	err = lib.Documents().AddTag("", "x")
	assert.ErrorIs(t, err, types.ErrDocumentIDRequired)

	err = lib.Documents().AddTag("missing", "")
	assert.ErrorIs(t, err, types.ErrTagRequired, "input is validated before the lookup")

	assert.Empty(t, log.all())
}

func TestDocuments_RemoveTag(t *testing.T) {
	lib, _, _ := newTestLibrary(t)
	doc := mustCreate(t, lib, "Tagged")
	require.NoError(t, lib.Documents().AddTag(doc.ID, "a"))
	require.NoError(t, lib.Documents().AddTag(doc.ID, "b"))

	require.NoError(t, lib.Documents().RemoveTag(doc.ID, "a"))
	require.NoError(t, lib.Documents().RemoveTag(doc.ID, "absent"))
	require.NoError(t, lib.Documents().RemoveTag("missing", "b"))

	got, err := lib.Documents().Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got.Tags)
}

func TestDocuments_RenameTag(t *testing.T) {
	lib, _, _ := newTestLibrary(t)
	doc := mustCreate(t, lib, "Tagged")
	for _, tag := range []string{"draft", "2024", "final"} {
		require.NoError(t, lib.Documents().AddTag(doc.ID, tag))
	}

	require.NoError(t, lib.Documents().RenameTag(doc.ID, "2024", "fy24"))
	got, err := lib.Documents().Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "fy24", "final"}, got.Tags)

	require.NoError(t, lib.Documents().RenameTag(doc.ID, "draft", "final"))
	got, err = lib.Documents().Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"fy24", "final"}, got.Tags, "renaming onto an existing tag merges")

	assert.ErrorIs(t, lib.Documents().RenameTag(doc.ID, "fy24", " "), types.ErrTagRequired)
	assert.NoError(t, lib.Documents().RenameTag("missing", "a", "b"))
}

func TestDocuments_TagOperationsTrimArguments(t *testing.T) {
	lib, _, _ := newTestLibrary(t)
	doc := mustCreate(t, lib, "Tagged")
	padded := "  " + doc.ID + " "

	require.NoError(t, lib.Documents().AddTag(padded, " a "))
	require.NoError(t, lib.Documents().AddTag(padded, "b"))
	require.NoError(t, lib.Documents().RenameTag(padded, " a", "c "))
	require.NoError(t, lib.Documents().RemoveTag(padded, " b "))

	got, err := lib.Documents().Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got.Tags)
}
