package engine

import (
	"time"

	"github.com/juanmilkah/volatix/internal/value"
)

// entry is the internal record behind a key. All mutation and access to an
// entry happens while the owning shard's lock is held.
type entry struct {
	val        value.Value
	compressed []byte // set iff isCompressed is true; the zstd envelope
	isCompressed bool

	createdAt    time.Time
	lastAccessed time.Time
	accessCount  uint64

	ttlExpiry   time.Time
	ttlOriginal time.Duration

	size int // byte cost, approximates the encoded value length
}

func (e *entry) expired(now time.Time) bool {
	return !now.Before(e.ttlExpiry)
}

func (e *entry) touch(now time.Time) {
	e.lastAccessed = now
	e.accessCount++
}

// Dump is the entry-metadata snapshot returned by the DUMP command.
type Dump struct {
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  uint64
	Size         int
	Compressed   bool
	TTLRemaining time.Duration
}
