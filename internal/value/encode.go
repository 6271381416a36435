package value

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode renders a Value as a small self-describing binary form: a tag
// byte followed by a type-specific payload. It is used by the storage
// engine's compression envelope and by the snapshot format — both need a
// byte representation of a Value that is independent of the wire
// protocol's RESP framing.
func Encode(v Value) []byte {
	buf := make([]byte, 0, 16)
	return appendValue(buf, v)
}

func appendValue(buf []byte, v Value) []byte {
	switch v.kind {
	case KindInt:
		buf = append(buf, byte(KindInt))
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v.i))
		return append(buf, tmp[:]...)
	case KindFloat:
		buf = append(buf, byte(KindFloat))
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v.f))
		return append(buf, tmp[:]...)
	case KindBool:
		buf = append(buf, byte(KindBool))
		if v.b {
			return append(buf, 1)
		}
		return append(buf, 0)
	case KindText:
		buf = append(buf, byte(KindText))
		return appendLenPrefixed(buf, []byte(v.text))
	case KindBytes:
		buf = append(buf, byte(KindBytes))
		return appendLenPrefixed(buf, v.bytes)
	case KindList:
		buf = append(buf, byte(KindList))
		buf = appendUint32(buf, uint32(len(v.list)))
		for _, elem := range v.list {
			buf = appendValue(buf, elem)
		}
		return buf
	case KindMap:
		buf = append(buf, byte(KindMap))
		buf = appendUint32(buf, uint32(len(v.m)))
		for k, elem := range v.m {
			buf = appendLenPrefixed(buf, []byte(k))
			buf = appendValue(buf, elem)
		}
		return buf
	default:
		return buf
	}
}

func appendLenPrefixed(buf []byte, data []byte) []byte {
	buf = appendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

func appendUint32(buf []byte, n uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], n)
	return append(buf, tmp[:]...)
}

// Decode parses the Encode format, returning the Value and the number of
// bytes consumed.
func Decode(buf []byte) (Value, int, error) {
	if len(buf) < 1 {
		return Value{}, 0, fmt.Errorf("value: empty buffer")
	}

	kind := Kind(buf[0])
	rest := buf[1:]

	switch kind {
	case KindInt:
		if len(rest) < 8 {
			return Value{}, 0, fmt.Errorf("value: truncated int")
		}
		return Int(int64(binary.LittleEndian.Uint64(rest[:8]))), 9, nil
	case KindFloat:
		if len(rest) < 8 {
			return Value{}, 0, fmt.Errorf("value: truncated float")
		}
		return Float(math.Float64frombits(binary.LittleEndian.Uint64(rest[:8]))), 9, nil
	case KindBool:
		if len(rest) < 1 {
			return Value{}, 0, fmt.Errorf("value: truncated bool")
		}
		return Bool(rest[0] != 0), 2, nil
	case KindText:
		data, n, err := readLenPrefixed(rest)
		if err != nil {
			return Value{}, 0, err
		}
		return Text(string(data)), 1 + n, nil
	case KindBytes:
		data, n, err := readLenPrefixed(rest)
		if err != nil {
			return Value{}, 0, err
		}
		return Bytes(append([]byte(nil), data...)), 1 + n, nil
	case KindList:
		count, n, err := readUint32(rest)
		if err != nil {
			return Value{}, 0, err
		}
		consumed := 1 + n
		rest = rest[n:]
		list := make([]Value, 0, count)
		for i := uint32(0); i < count; i++ {
			elem, m, err := Decode(rest)
			if err != nil {
				return Value{}, 0, err
			}
			list = append(list, elem)
			rest = rest[m:]
			consumed += m
		}
		return List(list), consumed, nil
	case KindMap:
		count, n, err := readUint32(rest)
		if err != nil {
			return Value{}, 0, err
		}
		consumed := 1 + n
		rest = rest[n:]
		m := make(map[string]Value, count)
		for i := uint32(0); i < count; i++ {
			key, kn, err := readLenPrefixed(rest)
			if err != nil {
				return Value{}, 0, err
			}
			rest = rest[kn:]
			consumed += kn

			elem, vn, err := Decode(rest)
			if err != nil {
				return Value{}, 0, err
			}
			rest = rest[vn:]
			consumed += vn

			// Duplicate keys: last write wins.
			m[string(key)] = elem
		}
		return Map(m), consumed, nil
	default:
		return Value{}, 0, fmt.Errorf("value: unknown tag %d", kind)
	}
}

func readUint32(buf []byte) (uint32, int, error) {
	if len(buf) < 4 {
		return 0, 0, fmt.Errorf("value: truncated length")
	}
	return binary.LittleEndian.Uint32(buf[:4]), 4, nil
}

func readLenPrefixed(buf []byte) ([]byte, int, error) {
	n, consumed, err := readUint32(buf)
	if err != nil {
		return nil, 0, err
	}
	if uint32(len(buf)-consumed) < n {
		return nil, 0, fmt.Errorf("value: truncated payload")
	}
	return buf[consumed : consumed+int(n)], consumed + int(n), nil
}
