// Package cache holds the in-memory mirror of the schema store. One
// instance serves the whole process; lookups here replace a database round
// trip on the hot append path.
package cache

import (
	"sync"

	"sheetfeed/internal/core"
)

// MemoryCache implements core.SchemaCache with a mutex-guarded map.
// Schemas are cloned on the way in and out, so callers can mutate what they
// hold without racing other readers.
type MemoryCache struct {
	mu      sync.RWMutex
	schemas map[int64]*core.Schema
}

func New() *MemoryCache {
	return &MemoryCache{schemas: make(map[int64]*core.Schema)}
}

func (c *MemoryCache) Get(profileID int64) (*core.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[profileID]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

func (c *MemoryCache) Set(profileID int64, s *core.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[profileID] = s.Clone()
}

func (c *MemoryCache) Invalidate(profileID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.schemas, profileID)
}

func (c *MemoryCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas = make(map[int64]*core.Schema)
}

// Len reports the number of cached schemas.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.schemas)
}
