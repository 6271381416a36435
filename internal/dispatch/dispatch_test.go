package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmilkah/volatix/internal/dispatch"
	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/protocol"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.NewEngine(1, engine.DefaultConfig())
}

func cmd(args ...string) protocol.Frame {
	frames := make([]protocol.Frame, len(args))
	for i, a := range args {
		frames[i] = protocol.Bulk([]byte(a))
	}
	return protocol.Array(frames)
}

func TestHelloHandshake(t *testing.T) {
	e := newEngine(t)
	resp := dispatch.Execute(e, cmd("HELLO"))
	require.Equal(t, protocol.KindBulk, resp.Kind)
	assert.Equal(t, "HELLO", string(resp.Bulk))
}

func TestSetGetRoundTrip(t *testing.T) {
	e := newEngine(t)

	resp := dispatch.Execute(e, cmd("SET", "k", "v"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)

	resp = dispatch.Execute(e, cmd("GET", "k"))
	require.Equal(t, protocol.KindBulk, resp.Kind)
	assert.Equal(t, "v", string(resp.Bulk))
}

func TestGetMissingReturnsErrorFrame(t *testing.T) {
	e := newEngine(t)
	resp := dispatch.Execute(e, cmd("GET", "missing"))
	assert.Equal(t, protocol.KindError, resp.Kind)
}

func TestUnknownCommandReturnsError(t *testing.T) {
	e := newEngine(t)
	resp := dispatch.Execute(e, cmd("BOGUS"))
	assert.Equal(t, protocol.KindError, resp.Kind)
}

func TestArityMismatchReturnsError(t *testing.T) {
	e := newEngine(t)
	resp := dispatch.Execute(e, cmd("SET", "onlykey"))
	assert.Equal(t, protocol.KindError, resp.Kind)
}

func TestExistsIsBoolean(t *testing.T) {
	e := newEngine(t)
	dispatch.Execute(e, cmd("SET", "k", "v"))

	resp := dispatch.Execute(e, cmd("EXISTS", "k"))
	require.Equal(t, protocol.KindBoolean, resp.Kind)
	assert.True(t, resp.Bool)

	resp = dispatch.Execute(e, cmd("EXISTS", "absent"))
	assert.False(t, resp.Bool)
}

func TestIncrDecr(t *testing.T) {
	e := newEngine(t)

	resp := dispatch.Execute(e, cmd("INCR", "counter"))
	require.Equal(t, protocol.KindInteger, resp.Kind)
	assert.Equal(t, int64(1), resp.Integer)

	resp = dispatch.Execute(e, cmd("DECR", "counter"))
	assert.Equal(t, int64(0), resp.Integer)
}

func TestSetListGetListDeleteList(t *testing.T) {
	e := newEngine(t)

	resp := dispatch.Execute(e, cmd("SETLIST", "l", "a", "b", "c"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)

	resp = dispatch.Execute(e, cmd("GET", "l"))
	require.Equal(t, protocol.KindArray, resp.Kind)
	assert.Len(t, resp.Array, 3)

	resp = dispatch.Execute(e, cmd("GETLIST", "l", "missing"))
	require.Equal(t, protocol.KindArray, resp.Kind)
	require.Len(t, resp.Array, 2)
	assert.Equal(t, protocol.KindArray, resp.Array[0].Kind)
	assert.True(t, resp.Array[1].Null)

	resp = dispatch.Execute(e, cmd("DELETELIST", "l", "missing"))
	require.Equal(t, protocol.KindInteger, resp.Kind)
	assert.Equal(t, int64(1), resp.Integer)
}

func TestSetMapRoundTrip(t *testing.T) {
	e := newEngine(t)

	resp := dispatch.Execute(e, cmd("SETMAP", "m", "f1", "v1", "f2", "v2"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)

	resp = dispatch.Execute(e, cmd("GET", "m"))
	require.Equal(t, protocol.KindMap, resp.Kind)
	assert.Len(t, resp.Map, 4)
}

func TestSetMapRejectsOddFieldCount(t *testing.T) {
	e := newEngine(t)
	resp := dispatch.Execute(e, cmd("SETMAP", "m", "f1", "v1", "f2"))
	assert.Equal(t, protocol.KindError, resp.Kind)
}

func TestSetWTTLAndGetTTL(t *testing.T) {
	e := newEngine(t)

	resp := dispatch.Execute(e, cmd("SETWTTL", "k", "v", "100"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)

	resp = dispatch.Execute(e, cmd("GETTTL", "k"))
	require.Equal(t, protocol.KindInteger, resp.Kind)
	assert.LessOrEqual(t, resp.Integer, int64(100))
	assert.Greater(t, resp.Integer, int64(0))
}

func TestExpireDelta(t *testing.T) {
	e := newEngine(t)
	dispatch.Execute(e, cmd("SETWTTL", "k", "v", "100"))

	resp := dispatch.Execute(e, cmd("EXPIRE", "k", "50"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)

	resp = dispatch.Execute(e, cmd("GETTTL", "k"))
	assert.Greater(t, resp.Integer, int64(100))
}

func TestEvictNowAndStats(t *testing.T) {
	e := newEngine(t)
	dispatch.Execute(e, cmd("SET", "a", "1"))

	resp := dispatch.Execute(e, cmd("GETSTATS"))
	require.Equal(t, protocol.KindMap, resp.Kind)

	resp = dispatch.Execute(e, cmd("RESETSTATS"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)

	resp = dispatch.Execute(e, cmd("EVICTNOW"))
	require.Equal(t, protocol.KindInteger, resp.Kind)
}

func TestDumpReturnsMetadataMap(t *testing.T) {
	e := newEngine(t)
	dispatch.Execute(e, cmd("SET", "k", "v"))

	resp := dispatch.Execute(e, cmd("DUMP", "k"))
	require.Equal(t, protocol.KindMap, resp.Kind)
	assert.Len(t, resp.Map, 12)
}

func TestConfGetSetOptionsReset(t *testing.T) {
	e := newEngine(t)

	resp := dispatch.Execute(e, cmd("CONFOPTIONS"))
	require.Equal(t, protocol.KindArray, resp.Kind)
	assert.NotEmpty(t, resp.Array)

	resp = dispatch.Execute(e, cmd("CONFSET", "MAXCAPACITY", "5"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)

	resp = dispatch.Execute(e, cmd("CONFGET", "MAXCAPACITY"))
	require.Equal(t, protocol.KindBulk, resp.Kind)
	assert.Equal(t, "5", string(resp.Bulk))

	resp = dispatch.Execute(e, cmd("CONFSET", "MAXCAPACITY", "not-a-number"))
	assert.Equal(t, protocol.KindError, resp.Kind)

	resp = dispatch.Execute(e, cmd("CONFRESET"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)
}

func TestRenameAndKeysAndFlush(t *testing.T) {
	e := newEngine(t)
	dispatch.Execute(e, cmd("SET", "a", "1"))

	resp := dispatch.Execute(e, cmd("RENAME", "a", "b"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)

	resp = dispatch.Execute(e, cmd("KEYS"))
	require.Equal(t, protocol.KindArray, resp.Kind)
	assert.Len(t, resp.Array, 1)

	resp = dispatch.Execute(e, cmd("FLUSH"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)

	resp = dispatch.Execute(e, cmd("KEYS"))
	assert.Empty(t, resp.Array)
}

func TestQuitReturnsOK(t *testing.T) {
	e := newEngine(t)
	resp := dispatch.Execute(e, cmd("QUIT"))
	assert.Equal(t, protocol.KindSimple, resp.Kind)
}

func TestCommandNameDetectsQuitCaseInsensitively(t *testing.T) {
	name, ok := dispatch.CommandName(cmd("quit"))
	require.True(t, ok)
	assert.Equal(t, "QUIT", name)
}
