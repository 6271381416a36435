package engine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/value"
)

func TestCompressionDisabledStoresPlain(t *testing.T) {
	e := newEngine(t, func(c *engine.Config) {
		c.Compression = false
		c.CompressionThreshold = 1
	})

	big := strings.Repeat("a", 10_000)
	require.NoError(t, e.Set("k", value.Text(big)))

	d, err := e.Dump("k")
	require.NoError(t, err)
	assert.False(t, d.Compressed)
}

func TestCompressionBelowThresholdStaysPlain(t *testing.T) {
	e := newEngine(t, func(c *engine.Config) {
		c.Compression = true
		c.CompressionThreshold = 10_000
	})

	require.NoError(t, e.Set("k", value.Text("short")))

	d, err := e.Dump("k")
	require.NoError(t, err)
	assert.False(t, d.Compressed)
}

func TestCompressionAboveThresholdRoundTrips(t *testing.T) {
	e := newEngine(t, func(c *engine.Config) {
		c.Compression = true
		c.CompressionThreshold = 16
	})

	big := strings.Repeat("volatix", 200)
	require.NoError(t, e.Set("k", value.Text(big)))

	d, err := e.Dump("k")
	require.NoError(t, err)
	assert.True(t, d.Compressed)

	got, err := e.Get("k")
	require.NoError(t, err)
	assert.Equal(t, big, got.Text())
}
