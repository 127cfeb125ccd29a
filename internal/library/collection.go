package library

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mesh-intelligence/docshelf/internal/kv"
)

// record is a persisted entity that can check its own shape.
type record interface {
	Validate() error
}

// collection is one store key holding a JSON array of T. It caches the
// last value read from or written to the store; the cache is only replaced
// after a successful write, so it never runs ahead of durable state.
// Callers hold Library.mu.
type collection[T record] struct {
	key    string
	store  kv.Store
	logger *slog.Logger

	items  []T
	loaded bool
}

func newCollection[T record](key string, store kv.Store, logger *slog.Logger) *collection[T] {
	return &collection[T]{key: key, store: store, logger: logger}
}

// snapshot returns a copy of the cached items, loading them on first use.
func (c *collection[T]) snapshot() ([]T, error) {
	if !c.loaded {
		if _, err := c.fresh(); err != nil {
			return nil, err
		}
	}
	return slices.Clone(c.items), nil
}

// fresh reads the key from the store, refreshes the cache and returns a
// copy. Every mutation starts here so it builds on the latest durable value.
func (c *collection[T]) fresh() ([]T, error) {
	raw, err := c.store.Read(c.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	c.items = c.decode(raw)
	c.loaded = true
	return slices.Clone(c.items), nil
}

// decode parses raw. A missing or unparseable key yields an empty
// collection; individual records that fail shape validation are skipped.
func (c *collection[T]) decode(raw []byte) []T {
	items := []T{}
	if len(raw) == 0 {
		return items
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		c.logger.Warn("malformed collection, treating as empty",
			"key", c.key, "error", err)
		return items
	}
	for i, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			c.logger.Warn("skipping malformed record", "key", c.key, "index", i, "error", err)
			continue
		}
		if err := item.Validate(); err != nil {
			c.logger.Warn("skipping invalid record", "key", c.key, "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

// save writes items and, only on success, makes them the cached value.
func (c *collection[T]) save(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.Write(c.key, data); err != nil {
		return err
	}
	c.items = slices.Clone(items)
	c.loaded = true
	return nil
}

// invalidate drops the cache so the next read goes to the store.
func (c *collection[T]) invalidate() {
	c.items = nil
	c.loaded = false
}
