package engine

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/juanmilkah/volatix/internal/value"
)

// zstd encoder/decoder are safe for concurrent use once constructed, so a
// single package-level pair is shared by every shard. They are built
// lazily on first use since most test and CLI invocations never touch
// compression (config.Compression defaults to false, per spec.md §4.6).
var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdInitErr error
)

func zstdCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdInitErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdInitErr != nil {
			return
		}
		zstdDecoder, zstdInitErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdInitErr
}

// maybeCompress decides whether v should be stored compressed under cfg,
// returning the entry fields to populate.
//
// Invariant (spec.md §3, invariant 2): if compression is disabled or the
// encoded size is below the threshold, the value is stored uncompressed
// regardless of the flag.
func maybeCompress(v value.Value, cfg Config) (compressed bool, payload []byte, size int, err error) {
	size = v.EncodedSize()

	if !cfg.Compression || uint64(size) < cfg.CompressionThreshold {
		return false, nil, size, nil
	}

	enc, _, err := zstdCodec()
	if err != nil {
		return false, nil, size, fmt.Errorf("compression: init codec: %w", err)
	}

	return true, enc.EncodeAll(value.Encode(v), nil), size, nil
}

// decompress reverses maybeCompress. A failure here is fatal to the
// request (spec.md §4.1 "Compression") but must not corrupt the stored
// entry, so callers must not mutate entry state before this succeeds.
func decompress(payload []byte) (value.Value, error) {
	_, dec, err := zstdCodec()
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: init codec: %v", ErrDecompress, err)
	}

	raw, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: %v", ErrDecompress, err)
	}

	v, _, err := value.Decode(raw)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: %v", ErrDecompress, err)
	}

	return v, nil
}
