package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		c := NewCache(3, time.Minute)
		c.Set("a", 1)

		entry, ok := c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, entry.Value)
	})

	t.Run("miss", func(t *testing.T) {
		c := NewCache(3, time.Minute)
		_, ok := c.Get("missing")
		assert.False(t, ok)
	})

	t.Run("evicts least recently used over capacity", func(t *testing.T) {
		c := NewCache(2, time.Minute)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Set("c", 3)

		_, ok := c.Get("a")
		assert.False(t, ok, "a should have been evicted")

		_, ok = c.Get("b")
		assert.True(t, ok)
		_, ok = c.Get("c")
		assert.True(t, ok)
	})

	t.Run("get promotes to most recently used", func(t *testing.T) {
		c := NewCache(2, time.Minute)
		c.Set("a", 1)
		c.Set("b", 2)

		c.Get("a") // promote a over b
		c.Set("c", 3)

		_, ok := c.Get("b")
		assert.False(t, ok, "b should have been evicted, not a")
		_, ok = c.Get("a")
		assert.True(t, ok)
	})

	t.Run("exact recency order after a promoting read", func(t *testing.T) {
		c := NewCache(10, time.Minute)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Set("c", 3)

		c.Get("a")

		assert.Equal(t, []string{"a", "c", "b"}, c.Keys())
	})

	t.Run("expired entry is swept lazily", func(t *testing.T) {
		c := NewCache(10, -time.Second) // already expired on insert
		c.Set("a", 1)

		_, ok := c.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Size())
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		c := NewCache(10, time.Minute)
		c.Set("a", 1)
		c.Delete("a")
		c.Delete("a") // no panic on missing key

		_, ok := c.Get("a")
		assert.False(t, ok)
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		c := NewCache(10, time.Minute)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Clear()

		assert.Equal(t, 0, c.Size())
		assert.Empty(t, c.Keys())
	})
}

func TestCacheEntryStaleness(t *testing.T) {
	now := time.Now()
	entry := CacheEntry{InsertedAt: now.Add(-10 * time.Second)}

	assert.True(t, entry.IsStale(now, 5*time.Second))
	assert.False(t, entry.IsStale(now, time.Minute))
}
