// Package value implements the tagged value model stored by the cache
// engine: a small closed set of variants shared by the wire protocol,
// the storage engine, and the snapshot format.
package value

import "fmt"

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindText
	KindBytes
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the variants the cache can store.
//
// Only one of the typed fields is meaningful at a time, selected by Kind.
// The zero Value is KindInt with Int == 0.
type Value struct {
	kind  Kind
	i     int64
	f     float64
	b     bool
	text  string
	bytes []byte
	list  []Value
	m     map[string]Value
}

func Int(v int64) Value     { return Value{kind: KindInt, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Bool(v bool) Value     { return Value{kind: KindBool, b: v} }
func Text(v string) Value   { return Value{kind: KindText, text: v} }
func Bytes(v []byte) Value  { return Value{kind: KindBytes, bytes: v} }
func List(v []Value) Value  { return Value{kind: KindList, list: v} }
func Map(v map[string]Value) Value { return Value{kind: KindMap, m: v} }

// Kind returns the variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// Int returns the Int payload; valid only when Kind() == KindInt.
func (v Value) Int() int64 { return v.i }

// Float returns the Float payload; valid only when Kind() == KindFloat.
func (v Value) Float() float64 { return v.f }

// Bool returns the Bool payload; valid only when Kind() == KindBool.
func (v Value) Bool() bool { return v.b }

// Text returns the Text payload; valid only when Kind() == KindText.
func (v Value) Text() string { return v.text }

// RawBytes returns the Bytes payload; valid only when Kind() == KindBytes.
func (v Value) RawBytes() []byte { return v.bytes }

// List returns the List payload; valid only when Kind() == KindList.
func (v Value) List() []Value { return v.list }

// Map returns the Map payload; valid only when Kind() == KindMap.
func (v Value) Map() map[string]Value { return v.m }

// EncodedSize approximates the byte cost of this value as it would be
// encoded on the wire. It is used both for the size-aware eviction policy
// and the compression-threshold gate.
func (v Value) EncodedSize() int {
	switch v.kind {
	case KindInt, KindFloat:
		return 8
	case KindBool:
		return 1
	case KindText:
		return len(v.text)
	case KindBytes:
		return len(v.bytes)
	case KindList:
		n := 0
		for _, elem := range v.list {
			n += elem.EncodedSize()
		}
		return n
	case KindMap:
		n := 0
		for k, elem := range v.m {
			n += len(k) + elem.EncodedSize()
		}
		return n
	default:
		return 0
	}
}

// Equal reports deep value equality, used by the value encode/decode
// round-trip tests and the engine tests.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	case KindText:
		return v.text == other.text
	case KindBytes:
		return bytesEqual(v.bytes, other.bytes)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(other.m) {
			return false
		}
		for k, elem := range v.m {
			oe, ok := other.m[k]
			if !ok || !elem.Equal(oe) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders a human-readable form, used by the interactive client
// and error messages. It is not a wire encoding.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindText:
		return v.text
	case KindBytes:
		return fmt.Sprintf("<%d bytes>", len(v.bytes))
	case KindList:
		return fmt.Sprintf("<list of %d>", len(v.list))
	case KindMap:
		return fmt.Sprintf("<map of %d>", len(v.m))
	default:
		return "<unknown>"
	}
}
