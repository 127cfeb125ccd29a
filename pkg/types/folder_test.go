package types

import (
	"errors"
	"testing"
)

func TestNewFolder(t *testing.T) {
	tests := []struct {
		name       string
		folderName string
		parentID   string
		wantName   string
		wantParent string
		wantErr    error
	}{
		{"root folder", "Invoices", "", "Invoices", "", nil},
		{"child folder", "2024", "p1", "2024", "p1", nil},
		{"name is trimmed", "  Reports  ", "", "Reports", "", nil},
		{"blank parent is a root", "Misc", "   ", "Misc", "", nil},
		{"empty name", "", "", "", "", ErrNameRequired},
		{"blank name", "   ", "p1", "", "", ErrNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFolder("id", tt.folderName, tt.parentID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrValidation) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if f.Name != tt.wantName || f.Parent() != tt.wantParent {
				t.Errorf("got name %q parent %q", f.Name, f.Parent())
			}
			if tt.wantParent == "" && f.ParentID != nil {
				t.Error("root folder should have a nil ParentID")
			}
		})
	}
}

func TestFolderCloneDoesNotSharePointer(t *testing.T) {
	parent := "p1"
	f := &Folder{ID: "1", Name: "a", ParentID: &parent}
	c := f.Clone()
	*c.ParentID = "p2"
	if f.Parent() != "p1" {
		t.Error("Clone shares the parent pointer")
	}
	if !f.IsChildOf("p1") || c.IsChildOf("p1") {
		t.Error("IsChildOf mismatch after clone")
	}
}
