package memory

import (
	"sync"

	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

// Cache is a session-scoped map of resolved agent records. Entries never expire
// and are never evicted; a Set for the same id replaces the whole value.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]domainprompt.Record
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]domainprompt.Record),
	}
}

func (c *Cache) Get(id domainprompt.AgentID) (domainprompt.Record, bool) {
	c.mu.RLock()
	r, ok := c.entries[id.Key()]
	c.mu.RUnlock()
	return r, ok
}

func (c *Cache) Set(id domainprompt.AgentID, r domainprompt.Record) {
	c.mu.Lock()
	c.entries[id.Key()] = r
	c.mu.Unlock()
}

// Invalidate drops id so the next resolution goes back to the network.
func (c *Cache) Invalidate(id domainprompt.AgentID) {
	c.mu.Lock()
	delete(c.entries, id.Key())
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
