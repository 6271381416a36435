// Package engine implements Volatix's in-memory key-value store: sharded
// concurrent maps, TTL expiry, configurable eviction, and optional
// compression, as described in spec.md §4.1 and §4.6.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/juanmilkah/volatix/internal/value"
)

// Engine is the storage engine. It owns one or more independently-locked
// shards (spec.md §9 permits sharding "without changing externally
// observable semantics") and a single guarded Config.
type Engine struct {
	shards []*shard

	cfgMu sync.RWMutex
	cfg   Config

	// admitMu serializes the admission decision (exists? -> admit() ->
	// insert) for brand-new keys across all shards. Without it, two
	// concurrent inserts of distinct new keys can both observe
	// totalEntries() < MaxCapacity and both proceed, pushing the store
	// past MaxCapacity (spec.md §3 invariant 5).
	admitMu sync.Mutex
}

// NewEngine constructs an Engine with the given shard count (1 reproduces
// the spec's single-lock design exactly) and initial configuration.
func NewEngine(shardCount int, cfg Config) *Engine {
	if shardCount < 1 {
		shardCount = 1
	}

	e := &Engine{
		shards: make([]*shard, shardCount),
		cfg:    cfg,
	}
	for i := range e.shards {
		e.shards[i] = newShard()
	}
	return e
}

func (e *Engine) getConfig() Config {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg
}

// ConfGet reads a single config knob.
func (e *Engine) ConfGet(name string) (string, error) {
	return e.getConfig().Get(name)
}

// ConfSet validates and applies a single config knob.
func (e *Engine) ConfSet(name, value string) error {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()

	next, err := e.cfg.Set(name, value)
	if err != nil {
		return err
	}
	e.cfg = next
	return nil
}

// ConfReset restores every config knob to its factory default.
func (e *Engine) ConfReset() {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	e.cfg = DefaultConfig()
}

// ConfOptions lists the configurable knob names.
func (e *Engine) ConfOptions() []string {
	return ConfOptions()
}

func (e *Engine) makeEntry(v value.Value, ttl time.Duration, now time.Time, cfg Config) (*entry, error) {
	compressed, payload, size, err := maybeCompress(v, cfg)
	if err != nil {
		return nil, err
	}

	ent := &entry{
		createdAt:    now,
		lastAccessed: now,
		accessCount:  0,
		ttlExpiry:    now.Add(ttl),
		ttlOriginal:  ttl,
		size:         size,
	}
	if compressed {
		ent.isCompressed = true
		ent.compressed = payload
	} else {
		ent.val = v
	}
	return ent, nil
}

func (e *entry) value() (value.Value, error) {
	if !e.isCompressed {
		return e.val, nil
	}
	return decompress(e.compressed)
}

// Set inserts or overwrites key with v, using the configured GlobalTTL.
// Inserting a brand-new key that would exceed MaxCapacity triggers
// eviction first (spec.md §4.1 "Admission control").
func (e *Engine) Set(key string, v value.Value) error {
	return e.SetWithTTL(key, v, 0)
}

// SetWithTTL inserts or overwrites key with v and an explicit TTL. A zero
// ttl falls back to the configured GlobalTTL.
func (e *Engine) SetWithTTL(key string, v value.Value, ttl time.Duration) error {
	cfg := e.getConfig()
	if ttl <= 0 {
		ttl = cfg.GlobalTTL
	}

	sh := e.shardFor(key)
	now := time.Now()

	e.admitMu.Lock()
	defer e.admitMu.Unlock()

	sh.mu.RLock()
	_, exists := sh.entries[key]
	sh.mu.RUnlock()

	if !exists {
		if err := e.admit(cfg); err != nil {
			return err
		}
	}

	ent, err := e.makeEntry(v, ttl, now, cfg)
	if err != nil {
		return err
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, already := sh.entries[key]; !already {
		sh.liveCount.Add(1)
	}
	sh.entries[key] = ent
	return nil
}

// Get returns the value stored at key. Expired entries are removed lazily
// and reported as ErrNotFound (spec.md §4.1 "Expiry").
func (e *Engine) Get(key string) (value.Value, error) {
	sh := e.shardFor(key)
	now := time.Now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	ent, ok := sh.entries[key]
	if !ok {
		sh.misses.Add(1)
		return value.Value{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if ent.expired(now) {
		delete(sh.entries, key)
		sh.liveCount.Add(-1)
		sh.expiredRemovals.Add(1)
		sh.misses.Add(1)
		return value.Value{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	ent.touch(now)
	sh.hits.Add(1)

	v, err := ent.value()
	if err != nil {
		return value.Value{}, err
	}
	return v, nil
}

// Exists reports whether key is present and unexpired, without affecting
// recency/frequency stats.
func (e *Engine) Exists(key string) bool {
	sh := e.shardFor(key)
	now := time.Now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	ent, ok := sh.entries[key]
	return ok && !ent.expired(now)
}

// Delete removes key, reporting ErrNotFound if it was absent or already
// expired.
func (e *Engine) Delete(key string) error {
	sh := e.shardFor(key)
	now := time.Now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	ent, ok := sh.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	delete(sh.entries, key)
	sh.liveCount.Add(-1)
	if ent.expired(now) {
		sh.expiredRemovals.Add(1)
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return nil
}

// Rename moves the value at oldKey to newKey, failing with ErrNotFound if
// oldKey is absent/expired or ErrConflict if newKey already exists
// (spec.md §4.3 "RENAME").
func (e *Engine) Rename(oldKey, newKey string) error {
	if oldKey == newKey {
		if e.Exists(oldKey) {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrNotFound, oldKey)
	}

	oldSh := e.shardFor(oldKey)
	newSh := e.shardFor(newKey)
	now := time.Now()

	// Lock shards in a stable order to avoid deadlock when two Renames
	// cross shard boundaries in opposite directions.
	first, second := oldSh, newSh
	if fnvLess(newSh, oldSh) {
		first, second = newSh, oldSh
	}
	first.mu.Lock()
	if second != first {
		second.mu.Lock()
		defer second.mu.Unlock()
	}
	defer first.mu.Unlock()

	ent, ok := oldSh.entries[oldKey]
	if !ok || ent.expired(now) {
		return fmt.Errorf("%w: %q", ErrNotFound, oldKey)
	}
	if existing, ok := newSh.entries[newKey]; ok && !existing.expired(now) {
		return fmt.Errorf("%w: %q", ErrConflict, newKey)
	}

	delete(oldSh.entries, oldKey)
	oldSh.liveCount.Add(-1)

	if _, already := newSh.entries[newKey]; !already {
		newSh.liveCount.Add(1)
	}
	newSh.entries[newKey] = ent

	return nil
}

// fnvLess imposes an arbitrary but stable total order on shard pointers
// for Rename's two-shard lock ordering.
func fnvLess(a, b *shard) bool {
	return fmt.Sprintf("%p", a) < fmt.Sprintf("%p", b)
}

// Keys returns every live, unexpired key. The result is a point-in-time
// snapshot; callers must not assume it remains valid under concurrent
// writers.
func (e *Engine) Keys() []string {
	now := time.Now()
	var keys []string
	for _, sh := range e.shards {
		sh.mu.RLock()
		for k, ent := range sh.entries {
			if !ent.expired(now) {
				keys = append(keys, k)
			}
		}
		sh.mu.RUnlock()
	}
	return keys
}

// Flush removes every entry from every shard.
func (e *Engine) Flush() {
	for _, sh := range e.shards {
		sh.mu.Lock()
		sh.entries = make(map[string]*entry)
		sh.liveCount.Store(0)
		sh.mu.Unlock()
	}
}

// Dump returns metadata for key without affecting hit/miss stats
// (spec.md §4.3 "DUMP").
func (e *Engine) Dump(key string) (Dump, error) {
	sh := e.shardFor(key)
	now := time.Now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	ent, ok := sh.entries[key]
	if !ok || ent.expired(now) {
		return Dump{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	return Dump{
		CreatedAt:    ent.createdAt,
		LastAccessed: ent.lastAccessed,
		AccessCount:  ent.accessCount,
		Size:         ent.size,
		Compressed:   ent.isCompressed,
		TTLRemaining: ent.ttlExpiry.Sub(now),
	}, nil
}
