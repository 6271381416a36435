package protocol

import (
	"strconv"
)

// Serialize renders f in wire form.
func Serialize(f Frame) []byte {
	var buf []byte
	return appendFrame(buf, f)
}

func appendFrame(buf []byte, f Frame) []byte {
	switch f.Kind {
	case KindBulk:
		if f.Null {
			return append(buf, "$-1\r\n"...)
		}
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(f.Bulk)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, f.Bulk...)
		return append(buf, '\r', '\n')
	case KindSimple:
		buf = append(buf, '+')
		buf = append(buf, f.Simple...)
		return append(buf, '\r', '\n')
	case KindError:
		buf = append(buf, '-')
		buf = append(buf, f.ErrMsg...)
		return append(buf, '\r', '\n')
	case KindInteger:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, f.Integer, 10)
		return append(buf, '\r', '\n')
	case KindDouble:
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, f.Double, 'g', -1, 64)
		return append(buf, '\r', '\n')
	case KindBoolean:
		if f.Bool {
			return append(buf, '#', 't', '\r', '\n')
		}
		return append(buf, '#', 'f', '\r', '\n')
	case KindArray:
		if f.Null {
			return append(buf, "*-1\r\n"...)
		}
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(f.Array)), 10)
		buf = append(buf, '\r', '\n')
		for _, elem := range f.Array {
			buf = appendFrame(buf, elem)
		}
		return buf
	case KindMap:
		buf = append(buf, '%')
		buf = strconv.AppendInt(buf, int64(len(f.Map)/2), 10)
		buf = append(buf, '\r', '\n')
		for _, elem := range f.Map {
			buf = appendFrame(buf, elem)
		}
		return buf
	default:
		return buf
	}
}
