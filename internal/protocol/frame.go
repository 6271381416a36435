// Package protocol implements Volatix's wire codec: a RESP3 subset, a
// length-prefixed, CRLF-terminated framing (spec.md §4.2). The codec is a
// pure function of its input buffer — it never blocks nor touches the
// engine, mirroring the teacher's `pkg/slotcache/format.go` style of
// explicit byte-offset decoding, adapted here to line-oriented framing.
package protocol

import "fmt"

// Kind identifies a Frame's wire type.
type Kind uint8

const (
	KindBulk Kind = iota
	KindSimple
	KindError
	KindInteger
	KindDouble
	KindBoolean
	KindArray
	KindMap
)

// Limits, per spec.md §4.2/§4.4: the parser rejects lengths beyond these
// before ever allocating for them.
const (
	MaxBulkBytes  = 1 << 20 // 1 MiB per bulk string value
	MaxArrayElems = 1 << 20 // 1 Mi entries per array/map
)

// Frame is one parsed protocol value. Only the fields relevant to Kind
// are meaningful; Null is represented by Kind == KindBulk or KindArray
// with Null set true.
type Frame struct {
	Kind Kind
	Null bool

	Bulk    []byte
	Simple  string
	ErrMsg  string
	Integer int64
	Double  float64
	Bool    bool
	Array   []Frame
	Map     []Frame // flattened key/value pairs, alternating: Map[2i], Map[2i+1]
}

// ProtocolError reports a malformed frame: a bad length, mismatched
// CRLF, a length over a configured limit, or an unrecognized prefix.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %s", e.Reason)
}

func protoErr(format string, args ...any) error {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// Bulk builds a bulk-string frame.
func Bulk(b []byte) Frame { return Frame{Kind: KindBulk, Bulk: b} }

// NullBulk builds a null bulk-string frame ($-1).
func NullBulk() Frame { return Frame{Kind: KindBulk, Null: true} }

// Simple builds a simple-string frame.
func Simple(s string) Frame { return Frame{Kind: KindSimple, Simple: s} }

// Err builds an error frame.
func Err(msg string) Frame { return Frame{Kind: KindError, ErrMsg: msg} }

// Int builds an integer frame.
func Int(n int64) Frame { return Frame{Kind: KindInteger, Integer: n} }

// Double builds a double frame.
func Double(f float64) Frame { return Frame{Kind: KindDouble, Double: f} }

// Bool builds a boolean frame.
func Bool(b bool) Frame { return Frame{Kind: KindBoolean, Bool: b} }

// Array builds an array frame.
func Array(elems []Frame) Frame { return Frame{Kind: KindArray, Array: elems} }

// NullArray builds a null array frame (*-1).
func NullArray() Frame { return Frame{Kind: KindArray, Null: true} }

// MapFrame builds a map frame from alternating key/value pairs.
func MapFrame(pairs []Frame) Frame { return Frame{Kind: KindMap, Map: pairs} }
