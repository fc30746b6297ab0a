package dal

import (
	"sync"

	"github.com/omnidal-io/omnidal/pkg/dialect"
)

// pageKey identifies one memoized pagination rewrite. The key column may
// be empty; it still participates so keyed and unkeyed rewrites of the
// same window never alias.
type pageKey struct {
	sql         string
	offset      int
	limit       int
	keyColumn   string
	contextName string
}

// PageFormatCache memoizes dialect-specific pagination SQL process-wide.
// Rewrites are pure functions of the key, so entries are never
// invalidated.
type PageFormatCache struct {
	mu      sync.RWMutex
	entries map[pageKey]string
}

func NewPageFormatCache() *PageFormatCache {
	return &PageFormatCache{entries: make(map[pageKey]string)}
}

// Format returns the paginated form of sql for the given window,
// computing it through the dialect on first use.
func (c *PageFormatCache) Format(d dialect.Dialect, sql string, offset, limit int, keyColumn, contextName string) string {
	key := pageKey{sql: sql, offset: offset, limit: limit, keyColumn: keyColumn, contextName: contextName}

	c.mu.RLock()
	paged, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return paged
	}

	paged = d.Paginate(sql, offset, limit, keyColumn)

	c.mu.Lock()
	if existing, ok := c.entries[key]; ok {
		paged = existing
	} else {
		c.entries[key] = paged
	}
	c.mu.Unlock()
	return paged
}

// Len reports the number of memoized rewrites.
func (c *PageFormatCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
