package server

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/snapshot"
)

const expireSweepInterval = time.Second

// snapshotLoop ticks every interval, writing a snapshot of e to path. It
// runs as exactly one task for the server's lifetime (spec.md §5
// "exactly one snapshotter and one expirer task"), selecting on
// ctx.Done() for shutdown.
func snapshotLoop(ctx context.Context, e *engine.Engine, path string, interval time.Duration, errOut io.Writer) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := snapshot.Save(path, e); err != nil {
				fmt.Fprintf(errOut, "%s snapshot: %v\n", time.Now().Format(time.RFC3339), err)
			}
		}
	}
}

// expireLoop sweeps expired entries on a fixed interval (spec.md §4.7/§5;
// not separately configurable — the spec names no flag for it).
func expireLoop(ctx context.Context, e *engine.Engine) {
	ticker := time.NewTicker(expireSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.ExpireNow()
		}
	}
}
