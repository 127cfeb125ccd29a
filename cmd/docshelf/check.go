package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docshelf/internal/library"
)

var checkRepair bool

// errDangling makes check exit non-zero when references dangle.
var errDangling = usagef("dangling references found (run check --repair)")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report references to records that no longer exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			if checkRepair {
				removed, err := lib.Repair()
				if err != nil {
					return err
				}
				if !flagJSON {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d dangling access entries\n", removed)
				}
			}

			report, err := lib.Check()
			if err != nil {
				return err
			}
			if err := output(cmd, report, func(w io.Writer) { printReport(w, report) }); err != nil {
				return err
			}
			if len(report.DanglingAccess) > 0 {
				return errDangling
			}
			return nil
		})
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkRepair, "repair", false, "remove access entries whose document is gone")
}

func printReport(w io.Writer, r library.Report) {
	if r.Clean() {
		fmt.Fprintln(w, "OK")
		return
	}
	for _, e := range r.DanglingAccess {
		fmt.Fprintf(w, "dangling access: document %s, user %s\n", e.DocumentID, e.UserID)
	}
	for _, f := range r.OrphanFolders {
		fmt.Fprintf(w, "orphan folder: %s (%s), parent %s\n", f.ID, f.Name, f.Parent())
	}
}
