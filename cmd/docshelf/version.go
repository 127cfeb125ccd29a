package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/docshelf"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the docshelf version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "docshelf v%s\nmodule: %s\n", version, modulePath)
	},
}
