package fuzzy

import (
	"container/list"
	"slices"
	"sync"
)

// hit is a scored position in the item slice given to Match.
// Cached hits hold no item data; results are rebuilt from the caller's items.
type hit struct {
	index  int
	score  float64
	prefix int
}

// Cache is a concurrency-safe LRU of ranked hits keyed by prepared query
// and item-set fingerprint.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*list.Element
	order   *list.List // front is most recently used
}

type cacheEntry struct {
	key  string
	hits []hit
}

// NewCache creates a cache holding at most maxSize entries.
// A non-positive size falls back to 100.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// get returns the hits stored under key. The slice must not be modified.
func (c *Cache) get(key string) ([]hit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).hits, true //nolint:errcheck // order only holds *cacheEntry
}

// set stores a copy of hits under key, evicting the least recently used
// entry when full.
func (c *Cache) set(key string, hits []hit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hits = slices.Clone(hits)
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).hits = hits //nolint:errcheck // order only holds *cacheEntry
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key) //nolint:errcheck // order only holds *cacheEntry
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, hits: hits})
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.order.Init()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
