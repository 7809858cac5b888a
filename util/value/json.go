package value

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// MarshalJSON renders the value as JSON. Message fields appear in schema
// order. Byte and char arrays render as arrays of numbers. Non-finite floats
// render as the strings "NaN", "Infinity" and "-Infinity".
func (v Value) MarshalJSON() ([]byte, error) {
	return v.AppendJSON(nil)
}

// AppendJSON appends the JSON rendering of v to buf.
func (v Value) AppendJSON(buf []byte) ([]byte, error) {
	var err error
	switch v.kind {
	case Bool:
		return strconv.AppendBool(buf, v.b), nil
	case Int8, Int16, Int32, Int64:
		return strconv.AppendInt(buf, v.i, 10), nil
	case UInt8, UInt16, UInt32, UInt64, Char:
		return strconv.AppendUint(buf, v.u, 10), nil
	case Float32:
		return appendFloat(buf, v.f, 32), nil
	case Float64:
		return appendFloat(buf, v.f, 64), nil
	case Str:
		return appendString(buf, v.s)
	case Array:
		buf = append(buf, '[')
		for i, e := range v.elems {
			if i > 0 {
				buf = append(buf, ',')
			}
			if buf, err = e.AppendJSON(buf); err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case Message:
		buf = append(buf, '{')
		for i, m := range v.fields {
			if i > 0 {
				buf = append(buf, ',')
			}
			if buf, err = appendString(buf, m.Name); err != nil {
				return nil, err
			}
			buf = append(buf, ':')
			if buf, err = m.Value.AppendJSON(buf); err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	default:
		return nil, fmt.Errorf("cannot marshal %s value", v.kind)
	}
}

func appendFloat(buf []byte, f float64, bits int) []byte {
	switch {
	case math.IsNaN(f):
		return append(buf, `"NaN"`...)
	case math.IsInf(f, 1):
		return append(buf, `"Infinity"`...)
	case math.IsInf(f, -1):
		return append(buf, `"-Infinity"`...)
	default:
		return strconv.AppendFloat(buf, f, 'f', -1, bits)
	}
}

func appendString(buf []byte, s string) ([]byte, error) {
	quoted, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string: %w", err)
	}
	return append(buf, quoted...), nil
}
