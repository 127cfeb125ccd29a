package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docshelf/internal/library"
	"github.com/mesh-intelligence/docshelf/pkg/types"
)

var folderParent string

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			folder, err := lib.Folders().Create(args[0], folderParent)
			if err != nil {
				return err
			}
			return output(cmd, folder, func(w io.Writer) {
				fmt.Fprintf(w, "Created folder %s (%s)\n", folder.ID, folder.Name)
			})
		})
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			if err := lib.Folders().Rename(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed folder %s\n", args[0])
			return nil
		})
	},
}

var folderDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a folder according to the folder_delete policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			if err := lib.Folders().Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %s (%s)\n", args[0], lib.Config().FolderDelete)
			return nil
		})
	},
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders as a tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			folders, err := lib.Folders().List()
			if err != nil {
				return err
			}
			return output(cmd, folders, func(w io.Writer) {
				if len(folders) == 0 {
					fmt.Fprintln(w, "No folders.")
					return
				}
				printFolderTree(w, folders)
			})
		})
	},
}

func init() {
	folderCreateCmd.Flags().StringVar(&folderParent, "parent", "", "parent folder id (default: root)")
	folderCmd.AddCommand(folderCreateCmd, folderRenameCmd, folderDeleteCmd, folderListCmd)
}

// printFolderTree prints roots first, then each folder's children indented
// below it. Folders whose parent is missing are listed as orphans.
func printFolderTree(w io.Writer, folders []types.Folder) {
	known := make(map[string]bool, len(folders))
	for _, f := range folders {
		known[f.ID] = true
	}

	seen := make(map[string]bool, len(folders))
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, f := range folders {
			if seen[f.ID] || f.Parent() != parent {
				continue
			}
			seen[f.ID] = true
			fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("  ", depth), f.ID, f.Name)
			walk(f.ID, depth+1)
		}
	}
	walk("", 0)

	for _, f := range folders {
		if seen[f.ID] || known[f.Parent()] {
			continue
		}
		seen[f.ID] = true
		fmt.Fprintf(w, "%s  %s  (orphan, parent %s)\n", f.ID, f.Name, f.Parent())
		walk(f.ID, 1)
	}
}
