package snapshot

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/value"
)

// encodeConfig renders a Config as a fixed-size record. Config.Get/Set
// work with named strings for the protocol layer; the snapshot format
// uses raw fields directly since it never crosses the wire.
func encodeConfig(cfg engine.Config) []byte {
	buf := make([]byte, 0, 26)
	buf = appendUint64(buf, uint64(cfg.GlobalTTL))
	buf = appendUint64(buf, cfg.MaxCapacity)
	buf = append(buf, byte(cfg.EvictionPolicy))
	if cfg.Compression {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = appendUint64(buf, cfg.CompressionThreshold)
	return buf
}

func decodeConfig(buf []byte) (engine.Config, error) {
	if len(buf) < 26 {
		return engine.Config{}, fmt.Errorf("snapshot: truncated config")
	}
	cfg := engine.Config{
		GlobalTTL:            time.Duration(readUint64(buf[0:8])),
		MaxCapacity:          readUint64(buf[8:16]),
		EvictionPolicy:       engine.EvictionPolicy(buf[16]),
		Compression:          buf[17] != 0,
		CompressionThreshold: readUint64(buf[18:26]),
	}
	return cfg, nil
}

// encodeEntry renders one EntrySnapshot. The value payload reuses
// internal/value's own Encode/Decode (the same format the engine's
// compression envelope uses), so the on-disk value representation never
// drifts from the in-process one.
func encodeEntry(es engine.EntrySnapshot) []byte {
	var buf []byte
	buf = appendLenPrefixedBytes(buf, []byte(es.Key))
	buf = appendUint64(buf, uint64(es.CreatedAt.UnixNano()))
	buf = appendUint64(buf, uint64(es.LastAccessed.UnixNano()))
	buf = appendUint64(buf, es.AccessCount)
	buf = appendUint64(buf, uint64(es.TTLExpiry.UnixNano()))
	buf = appendUint64(buf, uint64(es.TTLOriginal))
	buf = appendLenPrefixedBytes(buf, value.Encode(es.Value))
	return buf
}

func decodeEntry(buf []byte) (engine.EntrySnapshot, int, error) {
	key, n, err := readLenPrefixedBytes(buf)
	if err != nil {
		return engine.EntrySnapshot{}, 0, err
	}
	consumed := n
	rest := buf[n:]

	if len(rest) < 40 {
		return engine.EntrySnapshot{}, 0, fmt.Errorf("snapshot: truncated entry metadata")
	}
	createdAt := int64(readUint64(rest[0:8]))
	lastAccessed := int64(readUint64(rest[8:16]))
	accessCount := readUint64(rest[16:24])
	ttlExpiry := int64(readUint64(rest[24:32]))
	ttlOriginal := int64(readUint64(rest[32:40]))
	consumed += 40
	rest = rest[40:]

	valueBytes, n, err := readLenPrefixedBytes(rest)
	if err != nil {
		return engine.EntrySnapshot{}, 0, err
	}
	consumed += n

	v, _, err := value.Decode(valueBytes)
	if err != nil {
		return engine.EntrySnapshot{}, 0, fmt.Errorf("snapshot: decode value: %w", err)
	}

	return engine.EntrySnapshot{
		Key:          string(key),
		Value:        v,
		CreatedAt:    time.Unix(0, createdAt),
		LastAccessed: time.Unix(0, lastAccessed),
		AccessCount:  accessCount,
		TTLExpiry:    time.Unix(0, ttlExpiry),
		TTLOriginal:  time.Duration(ttlOriginal),
	}, consumed, nil
}

func appendUint64(buf []byte, n uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], n)
	return append(buf, tmp[:]...)
}

func readUint64(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}

func appendLenPrefixedBytes(buf, data []byte) []byte {
	buf = appendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

func appendUint32(buf []byte, n uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], n)
	return append(buf, tmp[:]...)
}

func readLenPrefixedBytes(buf []byte) ([]byte, int, error) {
	if len(buf) < 4 {
		return nil, 0, fmt.Errorf("snapshot: truncated length prefix")
	}
	n := binary.LittleEndian.Uint32(buf[:4])
	if uint32(len(buf)-4) < n {
		return nil, 0, fmt.Errorf("snapshot: truncated payload")
	}
	return buf[4 : 4+n], 4 + int(n), nil
}
