package engine

import (
	"fmt"
	"time"
)

// Expire adjusts key's remaining TTL by delta (which may be negative),
// per spec.md's EXPIRE REDESIGN FLAG: the argument is a signed delta
// applied to the current expiry, not an absolute new TTL. A result that
// would already be in the past expires the key immediately.
func (e *Engine) Expire(key string, delta time.Duration) error {
	sh := e.shardFor(key)
	now := time.Now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	ent, ok := sh.entries[key]
	if !ok || ent.expired(now) {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	ent.ttlExpiry = ent.ttlExpiry.Add(delta)
	if ent.expired(now) {
		delete(sh.entries, key)
		sh.liveCount.Add(-1)
		sh.expiredRemovals.Add(1)
	}
	return nil
}

// GetTTL returns the remaining time-to-live for key.
func (e *Engine) GetTTL(key string) (time.Duration, error) {
	sh := e.shardFor(key)
	now := time.Now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	ent, ok := sh.entries[key]
	if !ok || ent.expired(now) {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return ent.ttlExpiry.Sub(now), nil
}

// ExpireNow runs one proactive expiry sweep across every shard, returning
// the number of entries removed. The background expirer loop
// (internal/server) calls this periodically so that expired keys are
// reclaimed even without being read (spec.md §4.1 "Expiry").
func (e *Engine) ExpireNow() int {
	return e.sweepExpired(time.Now())
}
