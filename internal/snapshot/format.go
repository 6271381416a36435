// Package snapshot persists the engine's store and config to a compact
// binary file (spec.md §4.5), and restores them at server start-up. The
// header shape is directly grounded on the teacher's
// pkg/slotcache/format.go SLC1 header: a fixed magic, a version, and a
// CRC32C guarding the header bytes — adapted to Volatix's much smaller
// fixed-size header, since there is no slot/bucket table to describe.
package snapshot

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const (
	magic      = "VLX1"
	version    = 1
	headerSize = 28
)

// Header field offsets, mirroring the explicit-offset style of the
// teacher's slc1Header.
const (
	offMagic        = 0x00 // [4]byte
	offVersion      = 0x04 // uint32
	offHeaderSize   = 0x08 // uint32
	offEntryCount   = 0x0C // uint32
	offConfigSize   = 0x10 // uint32
	offBodyCRC32C   = 0x14 // uint32
	offHeaderCRC32C = 0x18 // uint32
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

type header struct {
	EntryCount uint32
	ConfigSize uint32
	BodyCRC32C uint32
}

func encodeHeader(h header) []byte {
	buf := make([]byte, headerSize)
	copy(buf[offMagic:], magic)
	binary.LittleEndian.PutUint32(buf[offVersion:], version)
	binary.LittleEndian.PutUint32(buf[offHeaderSize:], headerSize)
	binary.LittleEndian.PutUint32(buf[offEntryCount:], h.EntryCount)
	binary.LittleEndian.PutUint32(buf[offConfigSize:], h.ConfigSize)
	binary.LittleEndian.PutUint32(buf[offBodyCRC32C:], h.BodyCRC32C)

	crc := crc32.Checksum(buf[:offHeaderCRC32C], crcTable)
	binary.LittleEndian.PutUint32(buf[offHeaderCRC32C:], crc)
	return buf
}

func decodeHeader(buf []byte) (header, error) {
	if len(buf) < headerSize {
		return header{}, fmt.Errorf("snapshot: truncated header")
	}
	if string(buf[offMagic:offMagic+4]) != magic {
		return header{}, fmt.Errorf("snapshot: bad magic %q", buf[offMagic:offMagic+4])
	}
	if v := binary.LittleEndian.Uint32(buf[offVersion:]); v != version {
		return header{}, fmt.Errorf("snapshot: unsupported version %d", v)
	}

	wantCRC := binary.LittleEndian.Uint32(buf[offHeaderCRC32C:])
	gotCRC := crc32.Checksum(buf[:offHeaderCRC32C], crcTable)
	if wantCRC != gotCRC {
		return header{}, fmt.Errorf("snapshot: header CRC mismatch")
	}

	return header{
		EntryCount: binary.LittleEndian.Uint32(buf[offEntryCount:]),
		ConfigSize: binary.LittleEndian.Uint32(buf[offConfigSize:]),
		BodyCRC32C: binary.LittleEndian.Uint32(buf[offBodyCRC32C:]),
	}, nil
}

func checksumBody(body []byte) uint32 {
	return crc32.Checksum(body, crcTable)
}
