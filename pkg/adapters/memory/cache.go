package memory

import (
	"context"
	"sync"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// Cache implements ports.ClauseCache in memory.
// Safe for concurrent use.
type Cache struct {
	data map[string]domain.Clauses
	mu   sync.RWMutex
}

// NewCache creates a new in-memory clause cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]domain.Clauses),
	}
}

// Get returns a copy of the clauses stored under key.
func (c *Cache) Get(ctx context.Context, key string) (domain.Clauses, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cs, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	// Copy on read so callers can't mutate cached clauses
	return cs.Clone(), nil
}

// Put stores a copy of clauses under key.
func (c *Cache) Put(ctx context.Context, key string, clauses domain.Clauses) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = clauses.Clone()
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
