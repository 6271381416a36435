package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/snapshot"
	"github.com/juanmilkah/volatix/internal/value"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	e := engine.NewEngine(1, engine.DefaultConfig())
	require.NoError(t, e.Set("a", value.Int(1)))
	require.NoError(t, e.Set("b", value.Text("hello")))
	require.NoError(t, e.SetMap("m", map[string]value.Value{"f": value.Int(9)}))

	path := filepath.Join(t.TempDir(), "volatix.snapshot")
	require.NoError(t, snapshot.Save(path, e))

	loaded := engine.NewEngine(1, engine.DefaultConfig())
	require.NoError(t, snapshot.Load(path, loaded))

	v, err := loaded.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int())

	v, err = loaded.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Text())

	v, err = loaded.Get("m")
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.Map()["f"].Int())
}

func TestSaveLoadPreservesConfig(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.MaxCapacity = 42
	cfg.EvictionPolicy = engine.PolicyLFU
	e := engine.NewEngine(1, cfg)

	path := filepath.Join(t.TempDir(), "volatix.snapshot")
	require.NoError(t, snapshot.Save(path, e))

	loaded := engine.NewEngine(1, engine.DefaultConfig())
	require.NoError(t, snapshot.Load(path, loaded))

	got, err := loaded.ConfGet("MAXCAPACITY")
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	got, err = loaded.ConfGet("EVICTPOLICY")
	require.NoError(t, err)
	assert.Equal(t, "LFU", got)
}

func TestSaveToExportsWithNatefinchAtomic(t *testing.T) {
	e := engine.NewEngine(1, engine.DefaultConfig())
	require.NoError(t, e.Set("a", value.Int(1)))

	path := filepath.Join(t.TempDir(), "export.snapshot")
	require.NoError(t, snapshot.SaveTo(path, e))

	exists, err := snapshot.Exists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	loaded := engine.NewEngine(1, engine.DefaultConfig())
	require.NoError(t, snapshot.Load(path, loaded))
	v, err := loaded.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int())
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snapshot")
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot"), 0o644))

	e := engine.NewEngine(1, engine.DefaultConfig())
	err := snapshot.Load(path, e)
	assert.Error(t, err)
}
