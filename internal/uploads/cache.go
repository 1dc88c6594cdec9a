package uploads

import (
	"sync"

	"github.com/google/uuid"
)

// Entry holds an uploaded workbook kept in memory between the analyze
// and normalize calls of the same session.
type Entry struct {
	Filename string
	Data     []byte
}

// Cache is an in-memory store of uploaded workbooks keyed by upload id.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache creates an empty upload cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Put stores the workbook bytes and returns the generated upload id.
func (c *Cache) Put(filename string, data []byte) string {
	id := uuid.New().String()
	c.mu.Lock()
	c.entries[id] = Entry{Filename: filename, Data: data}
	c.mu.Unlock()
	return id
}

// Get returns the entry for the given upload id.
func (c *Cache) Get(id string) (Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	return entry, ok
}

// Delete removes the entry for the given upload id.
func (c *Cache) Delete(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Len returns the number of cached uploads.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
