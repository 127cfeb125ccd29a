package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docshelf/internal/library"
	"github.com/mesh-intelligence/docshelf/pkg/types"
)

var (
	aclPermission string
	aclDocument   string
)

var aclCmd = &cobra.Command{
	Use:   "acl",
	Short: "Manage per-user access entries",
}

var aclAssignCmd = &cobra.Command{
	Use:   "assign <document-id> <user-id>",
	Short: "Grant a user a permission on a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			perm := types.Permission(aclPermission)
			if err := lib.Access().Assign(args[0], args[1], perm); err != nil {
				return err
			}
			if perm == "" {
				perm = types.PermissionView
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted %s %s on %s\n", args[1], permissionLabel(perm), args[0])
			return nil
		})
	},
}

var aclRevokeCmd = &cobra.Command{
	Use:   "revoke <document-id> <user-id>",
	Short: "Remove a user's access entry on a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			if err := lib.Access().Revoke(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s on %s\n", args[1], args[0])
			return nil
		})
	},
}

var aclListCmd = &cobra.Command{
	Use:   "list",
	Short: "List access entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			var (
				entries []types.AccessEntry
				err     error
			)
			if aclDocument != "" {
				entries, err = lib.Access().ListForDocument(aclDocument)
			} else {
				entries, err = lib.Access().List()
			}
			if err != nil {
				return err
			}
			return output(cmd, entries, func(w io.Writer) {
				if len(entries) == 0 {
					fmt.Fprintln(w, "No access entries.")
					return
				}
				for _, e := range entries {
					fmt.Fprintf(w, "%s  %s  %s\n", e.DocumentID, e.UserID, permissionLabel(e.Permission))
				}
			})
		})
	},
}

func init() {
	aclAssignCmd.Flags().StringVar(&aclPermission, "permission", "", "view, edit or download (default: view)")
	aclListCmd.Flags().StringVar(&aclDocument, "document", "", "only entries for this document id")
	aclCmd.AddCommand(aclAssignCmd, aclRevokeCmd, aclListCmd)
}
