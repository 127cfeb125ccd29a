package types

// Store keys, one per collection. Each repository owns exactly one key.
const (
	CollectionFiles   = "files"
	CollectionFolders = "folders"
	CollectionACL     = "acl"
)

// StandardCollections lists the collection keys for enumeration.
var StandardCollections = []string{
	CollectionFiles,
	CollectionFolders,
	CollectionACL,
}

// SignalKind names a change notification.
type SignalKind string

// Signal kinds. FileAdded follows document creation, DataChanged any other
// successful mutation, Storage a change written by another process.
const (
	SignalFileAdded   SignalKind = "file-added"
	SignalDataChanged SignalKind = "data-changed"
	SignalStorage     SignalKind = "storage"
)

// Signal is a change notification. It carries no delta: receivers re-read
// whatever they display. Collection is informational and empty for
// Storage signals.
type Signal struct {
	Kind       SignalKind
	Collection string
}
