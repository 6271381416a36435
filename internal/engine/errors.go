package engine

import "errors"

// Sentinel errors classifying engine failures, following the same grouped
// sentinel-error idiom the teacher repo uses for its own subsystems
// (root errors.go, pkg/slotcache/errors.go): one package-level var per
// failure class, wrapped with key/command context at the call site and
// classified by callers with errors.Is.
var (
	// ErrNotFound reports a missing key.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports that a RENAME target already exists.
	ErrConflict = errors.New("conflict")

	// ErrTypeMismatch reports INCR/DECR against a non-integer value.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrCapacity reports that eviction failed to free space for an
	// admission. Under correct configuration this should never occur.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrConfig reports an invalid configuration name or value.
	ErrConfig = errors.New("invalid config")

	// ErrDecompress reports a failure decompressing a stored value on
	// read. It does not corrupt the entry; the request simply fails.
	ErrDecompress = errors.New("decompress failed")
)
