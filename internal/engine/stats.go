package engine

// Stats mirrors spec.md §3 "Stats": process-wide counters, computed by
// summing each shard's independently-synchronized counters.
type Stats struct {
	Hits             uint64
	Misses           uint64
	Evictions        uint64
	ExpiredRemovals  uint64
	TotalEntries     uint64
}

// GetStats aggregates counters across all shards. Invariant 1 of spec.md §3
// ("stats.total_entries == |store|") holds at any quiescent point because
// TotalEntries is computed from the same liveCount each Insert/Delete/Evict/
// Expire path maintains, not a point-in-time map length.
func (e *Engine) GetStats() Stats {
	var s Stats
	for _, sh := range e.shards {
		s.Hits += sh.hits.Load()
		s.Misses += sh.misses.Load()
		s.Evictions += sh.evictions.Load()
		s.ExpiredRemovals += sh.expiredRemovals.Load()
	}
	s.TotalEntries = uint64(e.totalEntries())
	return s
}

// ResetStats zeroes every counter except TotalEntries, which always
// mirrors the live store cardinality and cannot be "reset" independently
// of removing entries.
func (e *Engine) ResetStats() {
	for _, sh := range e.shards {
		sh.hits.Store(0)
		sh.misses.Store(0)
		sh.evictions.Store(0)
		sh.expiredRemovals.Store(0)
	}
}
