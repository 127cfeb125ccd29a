// Package types defines the record types, signals, configuration and
// standard error values shared by the docshelf data layer.
//
// Three collections are persisted, each under its own store key: documents
// (files), folders (folders) and access entries (acl). Tags are not a
// collection of their own; they live inside Document records.
package types
