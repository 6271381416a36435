// Package connid assigns a unique identifier to each accepted connection
// for diagnostic correlation, grounded on the pack's requestid package
// (p-agent-test-kog-demo/internal/requestid) — the same uuid.New()
// pattern, threaded through a connection's lifetime instead of a single
// request's, since a connection is the natural long-lived unit in a
// cache server's connection handler.
package connid

import "github.com/google/uuid"

// ID is a per-connection identifier.
type ID string

// New generates a fresh connection id.
func New() ID {
	return ID(uuid.New().String())
}

func (id ID) String() string {
	return string(id)
}
