// Package main provides the docshelf CLI: document metadata, tags,
// folders and access entries kept in a local store.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// Exit codes: user errors are fixable by corrected input, system errors
// are storage or environment failures.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(os.Stderr, "docshelf:", err)
	return exitCode(err)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var usage *usageError
	switch {
	case errors.As(err, &usage), types.IsUserError(err):
		return exitUserError
	default:
		return exitSysError
	}
}

// usageError marks bad command-line input.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}
