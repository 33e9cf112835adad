package snapshot

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Cache is a write-back layer over a Store. Bootstrap loads everything once;
// after that reads never touch storage. Set and Delete mark keys dirty and
// Flush pushes the accumulated batch down in one pass. Safe for concurrent
// use.
type Cache struct {
	store   Store
	records map[string][]byte
	dirty   map[string]bool
	removed map[string]bool
	mu      sync.RWMutex
}

// NewCache creates a Cache backed by the given Store.
func NewCache(store Store) *Cache {
	return &Cache{
		store:   store,
		records: make(map[string][]byte),
		dirty:   make(map[string]bool),
		removed: make(map[string]bool),
	}
}

// Bootstrap loads every record from the store. Fleet snapshots are small, so
// there is no progressive loading; one pass fills the cache.
func (c *Cache) Bootstrap(ctx context.Context) error {
	keys, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap list: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	records, err := c.store.Load(ctx, keys...)
	if err != nil {
		return fmt.Errorf("bootstrap load: %w", err)
	}

	c.mu.Lock()
	for _, r := range records {
		c.records[r.Key] = r.Data
	}
	c.mu.Unlock()

	return nil
}

// Flush writes dirty records and applies pending deletions, then clears both
// sets. Records dirtied during the store round-trip stay dirty for the next
// flush.
func (c *Cache) Flush(ctx context.Context) error {
	c.mu.Lock()
	var toSave []Record
	for key := range c.dirty {
		if data, ok := c.records[key]; ok {
			toSave = append(toSave, Record{Key: key, Data: slices.Clone(data)})
		}
	}
	toDelete := make([]string, 0, len(c.removed))
	for key := range c.removed {
		toDelete = append(toDelete, key)
	}
	c.dirty = make(map[string]bool)
	c.removed = make(map[string]bool)
	c.mu.Unlock()

	if len(toSave) > 0 {
		if err := c.store.Save(ctx, toSave...); err != nil {
			return fmt.Errorf("flush save: %w", err)
		}
	}
	if len(toDelete) > 0 {
		if err := c.store.Delete(ctx, toDelete...); err != nil {
			return fmt.Errorf("flush delete: %w", err)
		}
	}
	return nil
}

// Get returns a copy of the cached record for key.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.records[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(data), true
}

// Set stores a record and marks it dirty.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[key] = slices.Clone(data)
	c.dirty[key] = true
	delete(c.removed, key)
}

// Delete drops a record and schedules its removal from storage.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.records, key)
	delete(c.dirty, key)
	c.removed[key] = true
}

// Keys returns the cached keys, sorted.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.records))
	for key := range c.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
