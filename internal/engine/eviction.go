package engine

import "time"

// betterVictim reports whether candidate should be evicted instead of
// currentBest under policy, per the tie-break rules of spec.md §4.1:
//
//   - Oldest: minimum created_at.
//   - LRU: minimum last_accessed.
//   - LFU: minimum access_count; ties broken by older last_accessed.
//   - SizeAware: maximum size; ties broken by older created_at.
func betterVictim(policy EvictionPolicy, candidate, currentBest *entry) bool {
	switch policy {
	case PolicyOldest:
		return candidate.createdAt.Before(currentBest.createdAt)
	case PolicyLRU:
		return candidate.lastAccessed.Before(currentBest.lastAccessed)
	case PolicyLFU:
		if candidate.accessCount != currentBest.accessCount {
			return candidate.accessCount < currentBest.accessCount
		}
		return candidate.lastAccessed.Before(currentBest.lastAccessed)
	case PolicySizeAware:
		if candidate.size != currentBest.size {
			return candidate.size > currentBest.size
		}
		return candidate.createdAt.Before(currentBest.createdAt)
	default:
		return false
	}
}

// evictOnce scans every shard linearly (spec.md §9: "linear scans are
// O(n) per eviction... MAY maintain auxiliary indices" — Volatix does
// not) and removes exactly one victim under policy. It reports whether a
// victim was removed.
func (e *Engine) evictOnce(policy EvictionPolicy) bool {
	var bestShard *shard
	var bestKey string
	var bestEntry *entry
	found := false

	for _, sh := range e.shards {
		sh.mu.RLock()
		for k, ent := range sh.entries {
			if !found || betterVictim(policy, ent, bestEntry) {
				bestShard, bestKey, bestEntry, found = sh, k, ent, true
			}
		}
		sh.mu.RUnlock()
	}

	if !found {
		return false
	}

	bestShard.mu.Lock()
	defer bestShard.mu.Unlock()

	cur, ok := bestShard.entries[bestKey]
	if !ok || cur != bestEntry {
		// The candidate was removed or replaced between selection and
		// removal (concurrent delete/expire/overwrite); the caller's
		// admission loop re-evaluates totalEntries() and retries.
		return false
	}

	delete(bestShard.entries, bestKey)
	bestShard.liveCount.Add(-1)
	bestShard.evictions.Add(1)

	return true
}

// EvictNow runs one eviction sweep unconditionally and returns the number
// of entries removed (0 or 1, since each invocation selects at most one
// victim — spec.md §4.1).
func (e *Engine) EvictNow() int {
	policy := e.getConfig().EvictionPolicy
	if e.evictOnce(policy) {
		return 1
	}
	return 0
}

// admit makes room for one new entry, evicting victims under the current
// policy until the store has fewer than MaxCapacity entries. It must only
// be called before inserting a genuinely new key — overwriting an
// existing key never triggers eviction (spec.md §4.1).
func (e *Engine) admit(cfg Config) error {
	for e.totalEntries() >= int64(cfg.MaxCapacity) {
		if !e.evictOnce(cfg.EvictionPolicy) && e.totalEntries() == 0 {
			return ErrCapacity
		}
	}
	return nil
}

// sweepExpired walks every shard removing entries whose TTL has elapsed,
// incrementing expired_removals once per removed entry. It is invoked by
// the background expirer loop (spec.md §4.1 "Expiry").
func (e *Engine) sweepExpired(now time.Time) int {
	removed := 0

	for _, sh := range e.shards {
		sh.mu.Lock()
		for k, ent := range sh.entries {
			if ent.expired(now) {
				delete(sh.entries, k)
				sh.liveCount.Add(-1)
				sh.expiredRemovals.Add(1)
				removed++
			}
		}
		sh.mu.Unlock()
	}

	return removed
}
