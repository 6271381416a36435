package protocol_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmilkah/volatix/internal/protocol"
)

func roundTrip(t *testing.T, f protocol.Frame) {
	t.Helper()
	wire := protocol.Serialize(f)
	got, consumed, err := protocol.Parse(wire)
	require.NoError(t, err)
	assert.Equal(t, len(wire), consumed)
	if diff := cmp.Diff(f, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripScalarFrames(t *testing.T) {
	roundTrip(t, protocol.Bulk([]byte("hello")))
	roundTrip(t, protocol.NullBulk())
	roundTrip(t, protocol.Simple("OK"))
	roundTrip(t, protocol.Err("ERR boom"))
	roundTrip(t, protocol.Int(-42))
	roundTrip(t, protocol.Double(3.25))
	roundTrip(t, protocol.Bool(true))
	roundTrip(t, protocol.Bool(false))
}

func TestRoundTripArraysAndMaps(t *testing.T) {
	roundTrip(t, protocol.Array([]protocol.Frame{
		protocol.Bulk([]byte("SET")),
		protocol.Bulk([]byte("k")),
		protocol.Int(7),
	}))
	roundTrip(t, protocol.NullArray())
	roundTrip(t, protocol.MapFrame([]protocol.Frame{
		protocol.Bulk([]byte("field")),
		protocol.Int(1),
	}))
}

func TestRoundTripNestedArray(t *testing.T) {
	roundTrip(t, protocol.Array([]protocol.Frame{
		protocol.Array([]protocol.Frame{protocol.Int(1), protocol.Int(2)}),
		protocol.Bulk([]byte("x")),
	}))
}

func TestParseIncompleteReturnsErrIncomplete(t *testing.T) {
	_, _, err := protocol.Parse([]byte("$5\r\nhel"))
	assert.ErrorIs(t, err, protocol.ErrIncomplete)

	_, _, err = protocol.Parse(nil)
	assert.ErrorIs(t, err, protocol.ErrIncomplete)
}

func TestParseRejectsUnknownPrefix(t *testing.T) {
	_, _, err := protocol.Parse([]byte("@oops\r\n"))
	var protoErr *protocol.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestParseRejectsOversizedBulk(t *testing.T) {
	_, _, err := protocol.Parse([]byte("$1048577\r\n"))
	var protoErr *protocol.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestParseRejectsOversizedArray(t *testing.T) {
	_, _, err := protocol.Parse([]byte("*1048577\r\n"))
	var protoErr *protocol.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestParseRejectsMissingCRLF(t *testing.T) {
	_, _, err := protocol.Parse([]byte("$3\r\nabcXY"))
	var protoErr *protocol.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestParseConsumesOnlyOneFrameFromLargerBuffer(t *testing.T) {
	wire := append(protocol.Serialize(protocol.Simple("OK")), protocol.Serialize(protocol.Int(1))...)
	f, consumed, err := protocol.Parse(wire)
	require.NoError(t, err)
	assert.Equal(t, protocol.KindSimple, f.Kind)
	assert.Less(t, consumed, len(wire))
}
