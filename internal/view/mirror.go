// Package view provides Mirror, a consumer that keeps an in-memory copy of
// the library current by re-reading it on every change signal.
package view

import (
	"sync"

	"github.com/mesh-intelligence/docshelf/internal/events"
	"github.com/mesh-intelligence/docshelf/internal/library"
	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// Source is what a Mirror reads from and listens to.
type Source interface {
	Snapshot() (library.Snapshot, error)
	Bus() *events.Bus
}

// RefreshFunc is called after each re-read triggered by sig.
type RefreshFunc func(snap library.Snapshot, sig types.Signal)

// Mirror holds a transient snapshot of the library for display. The
// snapshot is replaced wholesale on every signal; it is never patched.
type Mirror struct {
	src       Source
	onRefresh RefreshFunc

	mu        sync.RWMutex
	snap      library.Snapshot
	refreshes int
	err       error
	cancel    func()
}

// NewMirror returns a detached Mirror over src. onRefresh may be nil.
func NewMirror(src Source, onRefresh RefreshFunc) *Mirror {
	return &Mirror{src: src, onRefresh: onRefresh}
}

// Attach subscribes to the bus and then reads everything once, so a change
// committed while Attach runs is always followed by a refresh. Calling
// Attach on an attached Mirror is a no-op.
func (m *Mirror) Attach() error {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return nil
	}
	m.cancel = m.src.Bus().Subscribe(m.refresh)
	m.mu.Unlock()

	snap, err := m.src.Snapshot()
	if err != nil {
		m.Detach()
		return err
	}

	m.mu.Lock()
	// A refresh that already ran read after subscribing; keep it.
	if m.refreshes == 0 {
		m.snap = snap
	}
	m.mu.Unlock()
	return nil
}

// Detach unsubscribes. It is safe to call at any time, more than once.
func (m *Mirror) Detach() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Snapshot returns the last snapshot read.
func (m *Mirror) Snapshot() library.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Refreshes counts the re-reads triggered by signals.
func (m *Mirror) Refreshes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshes
}

// Err returns the error from the most recent re-read, if any. The previous
// snapshot is kept when a re-read fails.
func (m *Mirror) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *Mirror) refresh(sig types.Signal) {
	snap, err := m.src.Snapshot()

	m.mu.Lock()
	m.refreshes++
	m.err = err
	if err == nil {
		m.snap = snap
	}
	m.mu.Unlock()

	if err == nil && m.onRefresh != nil {
		m.onRefresh(snap, sig)
	}
}
