// Package library implements the docshelf repositories (documents, tags,
// folders and access entries) on top of a kv.Store, enforces the
// references between them, and publishes a change signal after every
// successful mutation.
//
// A Library is attached to a store with Attach and released with Detach,
// mirroring the lifecycle of the storage backend it wraps. All operations
// are synchronous; a mutation reads the key it changes, validates, writes,
// and then publishes before returning.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/docshelf/internal/events"
	"github.com/mesh-intelligence/docshelf/internal/kv"
	"github.com/mesh-intelligence/docshelf/internal/metrics"
	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// Library owns the three collections and the bus that reports changes to
// them.
type Library struct {
	mu       sync.Mutex
	attached bool
	config   types.Config
	policy   types.UploadPolicy

	store     kv.Store
	ownsStore bool
	injected  kv.Store
	bus       *events.Bus
	logger    *slog.Logger
	metrics   *metrics.Metrics

	files   *collection[types.Document]
	folders *collection[types.Folder]
	acl     *collection[types.AccessEntry]

	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// Option configures a Library.
type Option func(*Library)

// WithStore makes Attach use s instead of opening the configured backend.
// The caller keeps ownership: Detach does not close s.
func WithStore(s kv.Store) Option {
	return func(l *Library) { l.injected = s }
}

// WithBus shares an existing bus.
func WithBus(b *events.Bus) Option {
	return func(l *Library) { l.bus = b }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// WithMetrics records store and signal traffic in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Library) { l.metrics = m }
}

// New creates a detached Library.
func New(opts ...Option) *Library {
	l := &Library{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	if l.bus == nil {
		l.bus = events.New(events.WithLogger(l.logger), events.WithMetrics(l.metrics))
	}
	return l
}

// Attach opens the store described by cfg and starts watching it for
// changes made by other processes, when the store supports that.
// Returns ErrAlreadyAttached if called while attached.
func (l *Library) Attach(cfg types.Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.attached {
		return types.ErrAlreadyAttached
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	raw := l.injected
	l.ownsStore = raw == nil
	if raw == nil {
		s, err := kv.Open(cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		raw = s
	}

	l.config = cfg
	l.policy = cfg.UploadPolicy()
	l.store = kv.Instrument(raw, l.metrics)
	l.files = newCollection[types.Document](types.CollectionFiles, l.store, l.logger)
	l.folders = newCollection[types.Folder](types.CollectionFolders, l.store, l.logger)
	l.acl = newCollection[types.AccessEntry](types.CollectionACL, l.store, l.logger)

	if w, ok := raw.(kv.Watcher); ok {
		l.startWatch(w)
	}

	l.attached = true
	l.logger.Debug("library attached", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	return nil
}

// Detach stops the watcher and releases the store. Idempotent.
func (l *Library) Detach() error {
	l.mu.Lock()
	if !l.attached {
		l.mu.Unlock()
		return nil
	}
	l.attached = false
	stop, done := l.stopWatch, l.watchDone
	l.stopWatch, l.watchDone = nil, nil
	l.mu.Unlock()

	// The watcher takes l.mu when it fires, so wait for it unlocked.
	if stop != nil {
		stop()
		<-done
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	var err error
	if l.ownsStore {
		err = l.store.Close()
	}
	l.store = nil
	l.files, l.folders, l.acl = nil, nil, nil
	l.logger.Debug("library detached")
	return err
}

// Bus returns the change notification bus.
func (l *Library) Bus() *events.Bus { return l.bus }

// Config returns the normalized configuration passed to Attach.
func (l *Library) Config() types.Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.config
}

// Usage returns the bytes counted against the store ceiling.
func (l *Library) Usage() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.attached {
		return 0, types.ErrLibraryDetached
	}
	return l.store.Usage()
}

// Documents returns the document and tag repository.
func (l *Library) Documents() *Documents { return &Documents{lib: l} }

// Folders returns the folder repository.
func (l *Library) Folders() *Folders { return &Folders{lib: l} }

// Access returns the access entry repository.
func (l *Library) Access() *Access { return &Access{lib: l} }

// lock acquires l.mu and fails if the library is detached. On success the
// caller must unlock.
func (l *Library) lock() error {
	l.mu.Lock()
	if !l.attached {
		l.mu.Unlock()
		return types.ErrLibraryDetached
	}
	return nil
}

// notify publishes s. It must be called without l.mu held so handlers can
// read the repositories. A cascade overflow is logged; the mutation that
// triggered it has already been persisted and still succeeds.
//
// Delivery is synchronous only for the goroutine that starts a drain. If
// another goroutine is already delivering, s joins its queue and the
// mutation returns before subscribers have seen it; they will, before
// that other drain finishes.
func (l *Library) notify(kind types.SignalKind, collection string) {
	err := l.bus.Publish(types.Signal{Kind: kind, Collection: collection})
	if err != nil {
		l.logger.Error("change notification incomplete", "kind", kind, "collection", collection, "error", err)
	}
}

func (l *Library) startWatch(w kv.Watcher) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l.stopWatch, l.watchDone = cancel, done

	go func() {
		defer close(done)
		err := w.Watch(ctx, l.externalChange)
		if err != nil && !errors.Is(err, context.Canceled) {
			l.logger.Error("store watcher stopped", "error", err)
		}
	}()
}

// externalChange runs on the watcher goroutine when another process
// changed key (empty when unknown). Cached collections are dropped and a
// payload-less storage signal is published.
func (l *Library) externalChange(key string) {
	l.mu.Lock()
	if !l.attached {
		l.mu.Unlock()
		return
	}
	switch key {
	case types.CollectionFiles:
		l.files.invalidate()
	case types.CollectionFolders:
		l.folders.invalidate()
	case types.CollectionACL:
		l.acl.invalidate()
	case "":
		l.files.invalidate()
		l.folders.invalidate()
		l.acl.invalidate()
	default:
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	l.logger.Debug("external store change", "key", key)
	l.notify(types.SignalStorage, "")
}

// newID returns a UUID v7, falling back to v4 if v7 generation fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
