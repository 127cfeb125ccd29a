package types

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/docker/go-units"
)

// Config holds backend selection and parameters for Library.Attach.
type Config struct {
	Backend       string        `json:"backend" yaml:"backend"`
	DataDir       string        `json:"data_dir" yaml:"data_dir"`
	Quota         string        `json:"quota" yaml:"quota"`
	MaxUploadSize string        `json:"max_upload_size" yaml:"max_upload_size"`
	FolderDelete  string        `json:"folder_delete" yaml:"folder_delete"`
	WatchInterval time.Duration `json:"watch_interval" yaml:"watch_interval"`
	AllowedTypes  []string      `json:"allowed_types,omitempty" yaml:"allowed_types,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Folder delete policies. Shallow removes the folder and its direct
// children, leaving grandchildren with a dangling parent. Recursive removes
// the whole subtree. Reparent removes only the folder and moves its
// children to its parent.
const (
	FolderDeleteShallow   = "shallow"
	FolderDeleteRecursive = "recursive"
	FolderDeleteReparent  = "reparent"
)

// Defaults applied by Normalize.
const (
	DefaultQuota         = "5MiB"
	DefaultWatchInterval = 500 * time.Millisecond
)

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrQuotaInvalid         = errors.New("quota must be a positive size")
	ErrUploadSizeInvalid    = errors.New("max upload size must be a positive size")
	ErrFolderPolicyUnknown  = errors.New("unknown folder delete policy")
	ErrWatchIntervalInvalid = errors.New("watch interval must be positive")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendFile:   true,
	BackendMemory: true,
}

var knownFolderPolicies = map[string]bool{
	FolderDeleteShallow:   true,
	FolderDeleteRecursive: true,
	FolderDeleteReparent:  true,
}

// Normalize fills empty optional fields with their defaults. Backend is
// left alone so Validate can reject an empty one.
func (c Config) Normalize() Config {
	if c.Quota == "" {
		c.Quota = DefaultQuota
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = units.BytesSize(float64(DefaultMaxUploadSize))
	}
	if c.FolderDelete == "" {
		c.FolderDelete = FolderDeleteShallow
	}
	if c.WatchInterval == 0 {
		c.WatchInterval = DefaultWatchInterval
	}
	return c
}

// Validate checks that the Config is well-formed. Call Normalize first if
// optional fields may be empty.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	if n, err := units.RAMInBytes(c.Quota); err != nil || n <= 0 {
		return fmt.Errorf("%w: %q", ErrQuotaInvalid, c.Quota)
	}
	if n, err := units.RAMInBytes(c.MaxUploadSize); err != nil || n <= 0 {
		return fmt.Errorf("%w: %q", ErrUploadSizeInvalid, c.MaxUploadSize)
	}
	if !knownFolderPolicies[c.FolderDelete] {
		return fmt.Errorf("%w: %q", ErrFolderPolicyUnknown, c.FolderDelete)
	}
	if c.WatchInterval <= 0 {
		return ErrWatchIntervalInvalid
	}
	return nil
}

// QuotaBytes returns the store capacity ceiling in bytes.
func (c Config) QuotaBytes() int64 {
	n, _ := units.RAMInBytes(c.Quota)
	return n
}

// UploadPolicy returns the upload rules this config describes.
func (c Config) UploadPolicy() UploadPolicy {
	p := DefaultUploadPolicy()
	if n, err := units.RAMInBytes(c.MaxUploadSize); err == nil && n > 0 {
		p.MaxSize = n
	}
	if len(c.AllowedTypes) > 0 {
		p.AllowedTypes = slices.Clone(c.AllowedTypes)
	}
	return p
}
