package dal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnidal-io/omnidal/pkg/dialect"
)

func TestPageFormatCacheMemoizes(t *testing.T) {
	cache := NewPageFormatCache()
	d, ok := dialect.Get(dialect.MySQL)
	require.True(t, ok)

	first := cache.Format(d, "SELECT * FROM orders", 10, 20, "id", "db")
	second := cache.Format(d, "SELECT * FROM orders", 10, 20, "id", "db")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())
	assert.Contains(t, first, "LIMIT 20 OFFSET 10")
}

func TestPageFormatCacheKeyComponents(t *testing.T) {
	cache := NewPageFormatCache()
	d, _ := dialect.Get(dialect.MySQL)

	cache.Format(d, "SELECT * FROM orders", 0, 10, "id", "db")
	cache.Format(d, "SELECT * FROM orders", 10, 10, "id", "db")
	cache.Format(d, "SELECT * FROM orders", 0, 20, "id", "db")
	cache.Format(d, "SELECT * FROM orders", 0, 10, "", "db")
	cache.Format(d, "SELECT * FROM orders", 0, 10, "id", "other")

	// Every varied component produced a distinct entry; the empty key
	// column is a distinguishing value, not a wildcard.
	assert.Equal(t, 5, cache.Len())
}

func TestPageFormatCacheConcurrentSameKey(t *testing.T) {
	cache := NewPageFormatCache()
	d, _ := dialect.Get(dialect.SQLServer)

	results := make([]string, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Format(d, "SELECT * FROM t", 5, 5, "k", "db")
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, 1, cache.Len())
}
