package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docshelf/internal/library"
	"github.com/mesh-intelligence/docshelf/internal/logging"
	"github.com/mesh-intelligence/docshelf/internal/paths"
	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// resolveDataDir applies --data-dir > config data_dir > env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, cfg.GetString(cfgKeyDataDir))
}

// attachLibrary resolves the data directory and attaches a Library to it.
// The caller must defer lib.Detach().
func attachLibrary(opts ...library.Option) (*library.Library, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	opts = append([]library.Option{library.WithLogger(logging.Component(logger, "library"))}, opts...)
	lib := library.New(opts...)
	if err := lib.Attach(libraryConfig(cfg, dataDir)); err != nil {
		return nil, fmt.Errorf("attach library: %w", err)
	}
	return lib, nil
}

// withLibrary attaches a library for the duration of fn.
func withLibrary(fn func(lib *library.Library) error) error {
	lib, err := attachLibrary()
	if err != nil {
		return err
	}
	defer lib.Detach()
	return fn(lib)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// output prints v as JSON under --json, otherwise runs text.
func output(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), v)
	}
	text(cmd.OutOrStdout())
	return nil
}

// orDash renders an empty string as "-".
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// permissionLabel renders a stored permission, flagging unknown values.
func permissionLabel(p types.Permission) string {
	if p.Category() == types.PermissionUnknown {
		return fmt.Sprintf("%s (unknown)", p)
	}
	return string(p)
}
