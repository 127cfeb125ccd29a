package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docshelf/internal/library"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage the tags on a document",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <document-id> <tag>",
	Short: "Add a tag to a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			if err := lib.Documents().AddTag(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s\n", args[0])
			return nil
		})
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove <document-id> <tag>",
	Short: "Remove a tag from a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			if err := lib.Documents().RemoveTag(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Untagged %s\n", args[0])
			return nil
		})
	},
}

var tagRenameCmd = &cobra.Command{
	Use:   "rename <document-id> <old-tag> <new-tag>",
	Short: "Rename a tag on a document",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			if err := lib.Documents().RenameTag(args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed tag on %s\n", args[0])
			return nil
		})
	},
}

func init() {
	tagCmd.AddCommand(tagAddCmd, tagRemoveCmd, tagRenameCmd)
}
