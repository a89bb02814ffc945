package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetRoundTrip(t *testing.T) {
	c := New(10, 1<<20, time.Minute)
	c.Set("k", "v1", 0)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	c.Set("k", "v2", 0)
	v, ok = c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestCache_ExpiredEntryTreatedAsAbsent(t *testing.T) {
	c := New(10, 1<<20, time.Millisecond)
	c.Set("k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Has("k"))
}

func TestCache_EvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	c := New(2, 1<<20, time.Minute)
	c.Set("a", "1", 0)
	c.Set("b", "2", 0)
	// touch "a" so "b" becomes the LRU victim
	_, _ = c.Get("a")
	c.Set("c", "3", 0)

	_, aOK := c.Get("a")
	_, bOK := c.Get("b")
	_, cOK := c.Get("c")

	assert.True(t, aOK)
	assert.False(t, bOK)
	assert.True(t, cOK)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestCache_NeverExceedsMaxEntries(t *testing.T) {
	c := New(5, 1<<20, time.Minute)
	for i := 0; i < 50; i++ {
		c.Set(string(rune('a'+i%26))+string(rune(i)), i, 0)
		assert.LessOrEqual(t, c.Stats().Entries, 5)
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New(10, 1<<20, time.Minute)
	c.Set("k", "v", 0)
	assert.True(t, c.Delete("k"))
	assert.False(t, c.Delete("k"))

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Clear()
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCache_CleanupSweepsExpiredEntries(t *testing.T) {
	c := New(10, 1<<20, time.Millisecond)
	c.Set("a", 1, time.Millisecond)
	c.Set("b", 2, time.Hour)
	time.Sleep(5 * time.Millisecond)

	n := c.Cleanup()
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestCache_HitRate(t *testing.T) {
	c := New(10, 1<<20, time.Minute)
	c.Set("k", "v", 0)
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	assert.InDelta(t, 0.5, stats.HitRate(), 0.0001)
}

func TestKey_OrderIndependentOverFileHashes(t *testing.T) {
	k1 := Key("deep", []string{"h1", "h2"}, "query", "opts")
	k2 := Key("deep", []string{"h2", "h1"}, "query", "opts")
	assert.Equal(t, k1, k2)

	k3 := Key("quick", []string{"h1", "h2"}, "query", "opts")
	assert.NotEqual(t, k1, k3)
}
