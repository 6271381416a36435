package dispatch

import (
	"fmt"

	"github.com/juanmilkah/volatix/internal/protocol"
	"github.com/juanmilkah/volatix/internal/value"
)

// argText extracts a bulk-string argument as text. Command arguments
// travel over the wire as bulk strings (spec.md §4.3: "the first array
// element is the command name; remaining elements are positional
// arguments"); this is the single place that assumption is enforced.
func argText(f protocol.Frame) (string, error) {
	if f.Kind != protocol.KindBulk || f.Null {
		return "", fmt.Errorf("expected a bulk string argument")
	}
	return string(f.Bulk), nil
}

// argValue builds the Value a SET-family command should store from a
// request frame, preserving the frame's native Kind. Bulk arguments become
// Text, matching the wire convention that commands pass string arguments
// as bulk strings, so no command ever stores the Bytes kind; Array/Map
// arguments recurse element-wise.
func argValue(f protocol.Frame) (value.Value, error) {
	switch f.Kind {
	case protocol.KindBulk:
		if f.Null {
			return value.Value{}, fmt.Errorf("value argument must not be null")
		}
		return value.Text(string(f.Bulk)), nil
	case protocol.KindInteger:
		return value.Int(f.Integer), nil
	case protocol.KindDouble:
		return value.Float(f.Double), nil
	case protocol.KindBoolean:
		return value.Bool(f.Bool), nil
	case protocol.KindArray:
		if f.Null {
			return value.Value{}, fmt.Errorf("value argument must not be null")
		}
		list := make([]value.Value, len(f.Array))
		for i, elem := range f.Array {
			v, err := argValue(elem)
			if err != nil {
				return value.Value{}, err
			}
			list[i] = v
		}
		return value.List(list), nil
	case protocol.KindMap:
		if len(f.Map)%2 != 0 {
			return value.Value{}, fmt.Errorf("map argument has an odd number of elements")
		}
		m := make(map[string]value.Value, len(f.Map)/2)
		for i := 0; i+1 < len(f.Map); i += 2 {
			key, err := argText(f.Map[i])
			if err != nil {
				return value.Value{}, fmt.Errorf("map key: %w", err)
			}
			v, err := argValue(f.Map[i+1])
			if err != nil {
				return value.Value{}, err
			}
			m[key] = v
		}
		return value.Map(m), nil
	default:
		return value.Value{}, fmt.Errorf("unsupported value argument kind")
	}
}

// valueToFrame renders v in its native RESP3 frame type (spec.md §4.3:
// "Single value → its native RESP3 frame").
func valueToFrame(v value.Value) protocol.Frame {
	switch v.Kind() {
	case value.KindInt:
		return protocol.Int(v.Int())
	case value.KindFloat:
		return protocol.Double(v.Float())
	case value.KindBool:
		return protocol.Bool(v.Bool())
	case value.KindText:
		return protocol.Bulk([]byte(v.Text()))
	case value.KindBytes:
		return protocol.Bulk(v.RawBytes())
	case value.KindList:
		list := v.List()
		elems := make([]protocol.Frame, len(list))
		for i, elem := range list {
			elems[i] = valueToFrame(elem)
		}
		return protocol.Array(elems)
	case value.KindMap:
		m := v.Map()
		pairs := make([]protocol.Frame, 0, len(m)*2)
		for k, elem := range m {
			pairs = append(pairs, protocol.Bulk([]byte(k)), valueToFrame(elem))
		}
		return protocol.MapFrame(pairs)
	default:
		return protocol.NullBulk()
	}
}
