package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/value"
)

func newEngine(t *testing.T, mutate func(c *engine.Config)) *engine.Engine {
	t.Helper()
	cfg := engine.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return engine.NewEngine(1, cfg)
}

func TestSetGetRoundTrip(t *testing.T) {
	e := newEngine(t, nil)

	require.NoError(t, e.Set("k", value.Text("v")))

	got, err := e.Get("k")
	require.NoError(t, err)
	assert.True(t, value.Text("v").Equal(got))
}

func TestGetMissingIsNotFound(t *testing.T) {
	e := newEngine(t, nil)

	_, err := e.Get("absent")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestDeleteRemovesKey(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.Set("k", value.Int(1)))

	require.NoError(t, e.Delete("k"))
	assert.False(t, e.Exists("k"))

	err := e.Delete("k")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestRenameMovesValueAndRejectsConflict(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.Set("a", value.Int(1)))
	require.NoError(t, e.Set("b", value.Int(2)))

	err := e.Rename("a", "b")
	assert.ErrorIs(t, err, engine.ErrConflict)

	require.NoError(t, e.Rename("a", "c"))
	assert.False(t, e.Exists("a"))
	v, err := e.Get("c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int())
}

func TestFlushEmptiesStore(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.Set("a", value.Int(1)))
	require.NoError(t, e.Set("b", value.Int(2)))

	e.Flush()

	assert.False(t, e.Exists("a"))
	assert.False(t, e.Exists("b"))
	assert.Equal(t, uint64(0), e.GetStats().TotalEntries)
}

func TestTTLExpiryRemovesEntry(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.SetWithTTL("k", value.Int(1), time.Millisecond))

	time.Sleep(5 * time.Millisecond)

	_, err := e.Get("k")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestExpireDeltaCanExtendOrExpireImmediately(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.SetWithTTL("k", value.Int(1), time.Hour))

	require.NoError(t, e.Expire("k", time.Hour))
	ttl, err := e.GetTTL("k")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Hour)

	require.NoError(t, e.Expire("k", -2*time.Hour))
	_, err = e.GetTTL("k")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestIncrCreatesAsOneWhenMissing(t *testing.T) {
	e := newEngine(t, nil)

	n, err := e.Incr("counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = e.Incr("counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = e.Decr("counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestIncrTypeMismatch(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.Set("k", value.Text("not a number")))

	_, err := e.Incr("k")
	assert.ErrorIs(t, err, engine.ErrTypeMismatch)
}

func TestSetListAndSetMap(t *testing.T) {
	e := newEngine(t, nil)

	require.NoError(t, e.SetList("l", []value.Value{value.Int(1), value.Int(2)}))
	got, err := e.Get("l")
	require.NoError(t, err)
	assert.Equal(t, value.KindList, got.Kind())
	assert.Len(t, got.List(), 2)

	require.NoError(t, e.SetMap("m", map[string]value.Value{"f": value.Int(9)}))
	got, err = e.Get("m")
	require.NoError(t, err)
	assert.Equal(t, value.KindMap, got.Kind())
	assert.Equal(t, int64(9), got.Map()["f"].Int())
}

func TestGetListDeleteListBulkKeys(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.Set("a", value.Int(1)))
	require.NoError(t, e.Set("b", value.Int(2)))

	values, errs := e.GetList([]string{"a", "b", "missing"})
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.ErrorIs(t, errs[2], engine.ErrNotFound)
	assert.Equal(t, int64(1), values[0].Int())
	assert.Equal(t, int64(2), values[1].Int())

	count := e.DeleteList([]string{"a", "b", "missing"})
	assert.Equal(t, 2, count)
	assert.False(t, e.Exists("a"))
	assert.False(t, e.Exists("b"))
}

func TestAdmissionControlEvictsUnderCapacity(t *testing.T) {
	e := newEngine(t, func(c *engine.Config) {
		c.MaxCapacity = 2
		c.EvictionPolicy = engine.PolicyOldest
	})

	require.NoError(t, e.Set("a", value.Int(1)))
	time.Sleep(time.Millisecond)
	require.NoError(t, e.Set("b", value.Int(2)))
	time.Sleep(time.Millisecond)
	require.NoError(t, e.Set("c", value.Int(3)))

	assert.LessOrEqual(t, e.GetStats().TotalEntries, uint64(2))
	assert.False(t, e.Exists("a"))
	assert.True(t, e.Exists("c"))
}

func TestOverwriteDoesNotTriggerEviction(t *testing.T) {
	e := newEngine(t, func(c *engine.Config) {
		c.MaxCapacity = 1
	})

	require.NoError(t, e.Set("a", value.Int(1)))
	require.NoError(t, e.Set("a", value.Int(2)))

	v, err := e.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Int())
}

func TestStatsInvariantTotalEntriesMatchesStore(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.Set("a", value.Int(1)))
	require.NoError(t, e.Set("b", value.Int(2)))

	assert.Equal(t, uint64(len(e.Keys())), e.GetStats().TotalEntries)
}

func TestResetStatsKeepsTotalEntries(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.Set("a", value.Int(1)))
	_, _ = e.Get("a")
	_, _ = e.Get("missing")

	e.ResetStats()

	stats := e.GetStats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
	assert.Equal(t, uint64(1), stats.TotalEntries)
}

func TestConfSetInvalidReturnsConfigError(t *testing.T) {
	e := newEngine(t, nil)

	err := e.ConfSet("MAXCAPACITY", "0")
	assert.True(t, errors.Is(err, engine.ErrConfig))

	err = e.ConfSet("EVICTPOLICY", "BOGUS")
	assert.True(t, errors.Is(err, engine.ErrConfig))
}

func TestConfResetRestoresDefaults(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.ConfSet("MAXCAPACITY", "5"))

	e.ConfReset()

	got, err := e.ConfGet("MAXCAPACITY")
	require.NoError(t, err)
	assert.Equal(t, "1000000", got)
}

func TestDumpReportsMetadataWithoutAffectingStats(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.Set("k", value.Text("hello")))

	d, err := e.Dump("k")
	require.NoError(t, err)
	assert.Equal(t, 5, d.Size)
	assert.False(t, d.Compressed)
	assert.Equal(t, uint64(0), d.AccessCount)

	assert.Equal(t, uint64(0), e.GetStats().Hits)
}
