package snapshot

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/vfs"
)

func buildFile(e *engine.Engine) []byte {
	entries, cfg := e.Snapshot()

	var body []byte
	configBytes := encodeConfig(cfg)
	body = append(body, configBytes...)
	for _, es := range entries {
		body = append(body, encodeEntry(es)...)
	}

	h := header{
		EntryCount: uint32(len(entries)),
		ConfigSize: uint32(len(configBytes)),
		BodyCRC32C: checksumBody(body),
	}

	out := make([]byte, 0, headerSize+len(body))
	out = append(out, encodeHeader(h)...)
	out = append(out, body...)
	return out
}

// Save serializes e's store and config and atomically replaces path,
// via internal/vfs.AtomicWriter (spec.md §4.5's primary write path: temp
// sibling file, fsync, rename, directory fsync). On any error the temp
// file is removed and the existing snapshot file is left untouched.
func Save(path string, e *engine.Engine) error {
	data := buildFile(e)

	writer := vfs.NewAtomicWriter(vfs.NewReal())
	if err := writer.WriteWithDefaults(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("snapshot: save %q: %w", path, err)
	}
	return nil
}

// SaveTo exports e's store and config to an arbitrary operator-chosen
// path via the DUMPSNAPSHOT command, using natefinch/atomic rather than
// internal/vfs — a second, genuinely distinct atomic-replace call site
// from the periodic background snapshot writer (REDESIGN FLAGS).
func SaveTo(path string, e *engine.Engine) error {
	data := buildFile(e)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("snapshot: export %q: %w", path, err)
	}
	return nil
}

// Load reads a snapshot file and replaces e's store and config with its
// contents. Called once at server start-up (spec.md §4.5) before
// accepting connections.
func Load(path string, e *engine.Engine) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("snapshot: load %q: %w", path, err)
	}

	h, err := decodeHeader(raw)
	if err != nil {
		return fmt.Errorf("snapshot: %q: %w", path, err)
	}

	body := raw[headerSize:]
	if checksumBody(body) != h.BodyCRC32C {
		return fmt.Errorf("snapshot: %q: body CRC mismatch", path)
	}

	if uint32(len(body)) < h.ConfigSize {
		return fmt.Errorf("snapshot: %q: truncated config section", path)
	}
	cfg, err := decodeConfig(body[:h.ConfigSize])
	if err != nil {
		return fmt.Errorf("snapshot: %q: %w", path, err)
	}

	rest := body[h.ConfigSize:]
	entries := make([]engine.EntrySnapshot, 0, h.EntryCount)
	for i := uint32(0); i < h.EntryCount; i++ {
		es, n, err := decodeEntry(rest)
		if err != nil {
			return fmt.Errorf("snapshot: %q: entry %d: %w", path, i, err)
		}
		entries = append(entries, es)
		rest = rest[n:]
	}

	if err := e.LoadSnapshot(entries, cfg); err != nil {
		return fmt.Errorf("snapshot: %q: apply: %w", path, err)
	}
	return nil
}

// Exists reports whether a snapshot file is present at path.
func Exists(path string) (bool, error) {
	return vfs.NewReal().Exists(path)
}
