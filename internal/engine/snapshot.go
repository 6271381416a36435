package engine

import (
	"time"

	"github.com/juanmilkah/volatix/internal/value"
)

// EntrySnapshot is one key's point-in-time state, decompressed to a
// plain Value so the persistence format (internal/snapshot) never needs
// to know about the compression envelope.
type EntrySnapshot struct {
	Key          string
	Value        value.Value
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  uint64
	TTLExpiry    time.Time
	TTLOriginal  time.Duration
}

// Snapshot captures every live, unexpired entry plus the current config
// under a shared lock per shard (spec.md §4.5: "takes a shared lock,
// serializes {store, config}... implementations MAY copy-under-lock then
// serialize outside the lock to minimize write stalls" — the copy here
// IS the shared-lock section; internal/snapshot does the actual byte
// encoding afterwards, outside any engine lock).
func (e *Engine) Snapshot() ([]EntrySnapshot, Config) {
	now := time.Now()
	var out []EntrySnapshot

	for _, sh := range e.shards {
		sh.mu.RLock()
		for k, ent := range sh.entries {
			if ent.expired(now) {
				continue
			}
			v, err := ent.value()
			if err != nil {
				// A corrupt compressed entry is skipped rather than
				// failing the whole snapshot.
				continue
			}
			out = append(out, EntrySnapshot{
				Key:          k,
				Value:        v,
				CreatedAt:    ent.createdAt,
				LastAccessed: ent.lastAccessed,
				AccessCount:  ent.accessCount,
				TTLExpiry:    ent.ttlExpiry,
				TTLOriginal:  ent.ttlOriginal,
			})
		}
		sh.mu.RUnlock()
	}

	return out, e.getConfig()
}

// LoadSnapshot replaces the engine's entire contents and config with the
// given snapshot, re-applying the compression policy of cfg to each
// value as it is inserted (spec.md §4.5, server start-up load path).
func (e *Engine) LoadSnapshot(entries []EntrySnapshot, cfg Config) error {
	e.cfgMu.Lock()
	e.cfg = cfg
	e.cfgMu.Unlock()

	e.Flush()

	for _, es := range entries {
		sh := e.shardFor(es.Key)
		compressed, payload, size, err := maybeCompress(es.Value, cfg)
		if err != nil {
			return err
		}
		ent := &entry{
			createdAt:    es.CreatedAt,
			lastAccessed: es.LastAccessed,
			accessCount:  es.AccessCount,
			ttlExpiry:    es.TTLExpiry,
			ttlOriginal:  es.TTLOriginal,
			size:         size,
		}
		if compressed {
			ent.isCompressed = true
			ent.compressed = payload
		} else {
			ent.val = es.Value
		}

		sh.mu.Lock()
		if _, exists := sh.entries[es.Key]; !exists {
			sh.liveCount.Add(1)
		}
		sh.entries[es.Key] = ent
		sh.mu.Unlock()
	}

	return nil
}
