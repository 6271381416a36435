package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/value"
)

func TestEvictNowLRURemovesLeastRecentlyUsed(t *testing.T) {
	e := newEngine(t, func(c *engine.Config) {
		c.EvictionPolicy = engine.PolicyLRU
		c.MaxCapacity = 1_000_000
	})

	require.NoError(t, e.Set("a", value.Int(1)))
	time.Sleep(time.Millisecond)
	require.NoError(t, e.Set("b", value.Int(2)))

	// Touch "a" so "b" becomes the least recently used.
	_, err := e.Get("a")
	require.NoError(t, err)

	removed := e.EvictNow()
	assert.Equal(t, 1, removed)
	assert.True(t, e.Exists("a"))
	assert.False(t, e.Exists("b"))
}

func TestEvictNowLFURemovesLeastFrequentlyUsed(t *testing.T) {
	e := newEngine(t, func(c *engine.Config) {
		c.EvictionPolicy = engine.PolicyLFU
	})

	require.NoError(t, e.Set("a", value.Int(1)))
	require.NoError(t, e.Set("b", value.Int(2)))

	_, err := e.Get("a")
	require.NoError(t, err)
	_, err = e.Get("a")
	require.NoError(t, err)

	removed := e.EvictNow()
	assert.Equal(t, 1, removed)
	assert.True(t, e.Exists("a"))
	assert.False(t, e.Exists("b"))
}

func TestEvictNowSizeAwareRemovesLargest(t *testing.T) {
	e := newEngine(t, func(c *engine.Config) {
		c.EvictionPolicy = engine.PolicySizeAware
	})

	require.NoError(t, e.Set("small", value.Text("x")))
	require.NoError(t, e.Set("big", value.Text("xxxxxxxxxxxxxxxxxxxx")))

	removed := e.EvictNow()
	assert.Equal(t, 1, removed)
	assert.True(t, e.Exists("small"))
	assert.False(t, e.Exists("big"))
}

func TestEvictNowOnEmptyStoreRemovesNothing(t *testing.T) {
	e := newEngine(t, nil)
	assert.Equal(t, 0, e.EvictNow())
}

func TestExpireNowSweepsExpiredEntriesAndCountsThem(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.SetWithTTL("a", value.Int(1), time.Millisecond))
	require.NoError(t, e.Set("b", value.Int(2)))

	time.Sleep(5 * time.Millisecond)

	removed := e.ExpireNow()
	assert.Equal(t, 1, removed)
	assert.True(t, e.Exists("b"))

	stats := e.GetStats()
	assert.Equal(t, uint64(1), stats.ExpiredRemovals)
}
