package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetSetRoundTrip(t *testing.T) {
	c := New[string, int](Config{MaxEntries: 4, TTL: time.Minute}, nil)
	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, uint64(1), c.Stats().Hits)
}

func TestMissIncrementsStats(t *testing.T) {
	c := New[string, int](Config{MaxEntries: 4, TTL: time.Minute}, nil)
	_, ok := c.Get("missing")
	require.False(t, ok)
	require.Equal(t, uint64(1), c.Stats().Misses)
}

func TestLRUEvictsOldestOnCapacity(t *testing.T) {
	var evicted []string
	c := New[string, int](Config{MaxEntries: 2, TTL: time.Minute}, func(key string, _ int) {
		evicted = append(evicted, key)
	})
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	require.Equal(t, 2, c.Len())
	require.Contains(t, evicted, "a")
}

func TestTTLExpiry(t *testing.T) {
	c := New[string, int](Config{MaxEntries: 10, TTL: 10 * time.Millisecond}, nil)
	c.Set("a", 1)
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestRemoveMatching(t *testing.T) {
	c := New[string, int](Config{MaxEntries: 10, TTL: time.Minute}, nil)
	c.Set("domain:a:1", 1)
	c.Set("domain:a:2", 2)
	c.Set("domain:b:1", 3)

	removed := c.RemoveMatching(func(key string) bool {
		return len(key) >= 8 && key[:8] == "domain:a"
	})
	require.Equal(t, 2, removed)
	require.Equal(t, 1, c.Len())
}

func TestPurge(t *testing.T) {
	c := New[string, int](Config{MaxEntries: 10, TTL: time.Minute}, nil)
	c.Set("a", 1)
	c.Purge()
	require.Equal(t, 0, c.Len())
}
