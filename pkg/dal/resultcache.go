package dal

import (
	"strings"
	"sync"
)

// countSuffix separates the scalar-count key space from the row set key
// space. A count and a row set for the same SQL never collide.
const countSuffix = "_count"

type cacheEntry struct {
	payload any
	tables  []string
}

// ResultCache stores query results keyed by SQL text, tagged with the
// tables they depend on. Entries have no TTL: they die by table
// invalidation, a full flush, or disabling the cache.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[string]cacheEntry)}
}

// Lookup returns the cached payload for key, if present.
func (c *ResultCache) Lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.payload, ok
}

// PutIfAbsent stores payload under key unless a concurrent populate got
// there first; the existing entry wins and is returned. Never called with
// the lock already held across an executor round trip.
func (c *ResultCache) PutIfAbsent(key string, payload any, tables []string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.payload
	}
	c.entries[key] = cacheEntry{payload: payload, tables: tables}
	return payload
}

// Invalidate removes every entry tagged with table (case-insensitive).
// An empty name or "*" flushes the whole cache.
func (c *ResultCache) Invalidate(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if table == "" || table == "*" {
		c.entries = make(map[string]cacheEntry)
		return
	}
	for key, e := range c.entries {
		for _, t := range e.tables {
			if strings.EqualFold(t, table) {
				delete(c.entries, key)
				break
			}
		}
	}
}

// Flush drops every entry.
func (c *ResultCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports the number of live entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// queryKey builds the row set cache key for one statement on one context.
func queryKey(sql, contextName string) string {
	return sql + "|" + contextName
}

// countKey builds the scalar-count cache key. Same components as queryKey
// plus the count suffix, keeping the two key spaces disjoint.
func countKey(sql, contextName string) string {
	return sql + "|" + contextName + countSuffix
}
