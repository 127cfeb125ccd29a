package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docshelf/internal/library"
	"github.com/mesh-intelligence/docshelf/pkg/types"
)

var (
	docTitle       string
	docDescription string
	docTags        string
	docType        string
)

// officeTypes covers extensions the platform MIME table often lacks.
var officeTypes = map[string]string{
	".pdf":  types.MIMETypePDF,
	".docx": types.MIMETypeDOCX,
	".xlsx": types.MIMETypeXLSX,
}

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage document records",
}

var docAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Record a document's metadata (the file itself is not stored)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := os.Stat(args[0])
		if err != nil {
			return usagef("stat %s: %v", args[0], err)
		}
		if info.IsDir() {
			return usagef("%s is a directory", args[0])
		}

		upload := types.Upload{
			Title:       docTitle,
			Description: docDescription,
			Tags:        docTags,
			Type:        docType,
			Name:        info.Name(),
			Size:        info.Size(),
		}
		if upload.Type == "" {
			upload.Type = detectType(info.Name())
		}

		return withLibrary(func(lib *library.Library) error {
			doc, err := lib.Documents().Create(upload)
			if err != nil {
				return err
			}
			return output(cmd, doc, func(w io.Writer) {
				fmt.Fprintf(w, "Added document %s (%s, %s)\n", doc.ID, doc.Name, units.HumanSize(float64(upload.Size)))
			})
		})
	},
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents with their tags and access entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			snap, err := lib.Snapshot()
			if err != nil {
				return err
			}
			return output(cmd, snap.Documents, func(w io.Writer) {
				if len(snap.Documents) == 0 {
					fmt.Fprintln(w, "No documents.")
					return
				}
				for _, doc := range snap.Documents {
					printDocument(w, doc, snap.AccessFor(doc.ID))
				}
			})
		})
	},
}

var docShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			doc, err := lib.Documents().Get(args[0])
			if err != nil {
				return err
			}
			entries, err := lib.Access().ListForDocument(doc.ID)
			if err != nil {
				return err
			}
			return output(cmd, doc, func(w io.Writer) {
				printDocument(w, *doc, entries)
			})
		})
	},
}

var docDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document and its access entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			if err := lib.Documents().Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted document %s\n", args[0])
			return nil
		})
	},
}

func init() {
	docAddCmd.Flags().StringVar(&docTitle, "title", "", "document title (required)")
	docAddCmd.Flags().StringVar(&docDescription, "description", "", "document description")
	docAddCmd.Flags().StringVar(&docTags, "tags", "", "comma-separated tags")
	docAddCmd.Flags().StringVar(&docType, "type", "", "MIME type (default: detected from the file extension)")

	docCmd.AddCommand(docAddCmd, docListCmd, docShowCmd, docDeleteCmd)
}

// detectType maps a file name to a MIME type by extension.
func detectType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := officeTypes[ext]; ok {
		return t
	}
	t := mime.TypeByExtension(ext)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return t
}

func printDocument(w io.Writer, doc types.Document, entries []types.AccessEntry) {
	fmt.Fprintf(w, "%s  %s\n", doc.ID, doc.Title)
	fmt.Fprintf(w, "  name:        %s\n", doc.Name)
	fmt.Fprintf(w, "  type:        %s\n", doc.Type)
	fmt.Fprintf(w, "  description: %s\n", orDash(doc.Description))
	fmt.Fprintf(w, "  tags:        %s\n", orDash(strings.Join(doc.Tags, ", ")))
	if len(entries) == 0 {
		fmt.Fprintln(w, "  access:      -")
		return
	}
	fmt.Fprintln(w, "  access:")
	for _, e := range entries {
		fmt.Fprintf(w, "    %s: %s\n", e.UserID, permissionLabel(e.Permission))
	}
}
