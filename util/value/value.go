package value

import (
	"fmt"
	"slices"

	"github.com/wkalt/ros2dyn/util/schema"
)

/*
Package value implements the dynamic value tree produced by the CDR decoder.
A Value is a tagged union over the decoded scalar kinds, arrays and messages.
Messages keep their fields in schema order. Values are immutable once
constructed and may be shared across goroutines.
*/

////////////////////////////////////////////////////////////////////////////////

// Kind identifies the variant held by a Value.
type Kind int

const (
	Invalid Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	Char
	Str
	Array
	Message
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case UInt8:
		return "uint8"
	case UInt16:
		return "uint16"
	case UInt32:
		return "uint32"
	case UInt64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Char:
		return "char"
	case Str:
		return "string"
	case Array:
		return "array"
	case Message:
		return "message"
	default:
		return "invalid"
	}
}

// Member is a named field of a message value.
type Member struct {
	Name  string
	Value Value
}

// Value is a decoded value. The zero Value is invalid.
type Value struct {
	kind Kind

	b bool
	i int64
	u uint64
	f float64
	s string

	elems   []Value
	fields  []Member
	msgType schema.MessageIdentifier
}

func NewBool(v bool) Value       { return Value{kind: Bool, b: v} }
func NewInt8(v int8) Value       { return Value{kind: Int8, i: int64(v)} }
func NewInt16(v int16) Value     { return Value{kind: Int16, i: int64(v)} }
func NewInt32(v int32) Value     { return Value{kind: Int32, i: int64(v)} }
func NewInt64(v int64) Value     { return Value{kind: Int64, i: v} }
func NewUInt8(v uint8) Value     { return Value{kind: UInt8, u: uint64(v)} }
func NewUInt16(v uint16) Value   { return Value{kind: UInt16, u: uint64(v)} }
func NewUInt32(v uint32) Value   { return Value{kind: UInt32, u: uint64(v)} }
func NewUInt64(v uint64) Value   { return Value{kind: UInt64, u: v} }
func NewFloat32(v float32) Value { return Value{kind: Float32, f: float64(v)} }
func NewFloat64(v float64) Value { return Value{kind: Float64, f: v} }
func NewChar(v uint8) Value      { return Value{kind: Char, u: uint64(v)} }
func NewString(v string) Value   { return Value{kind: Str, s: v} }

// NewArray returns an array value that takes ownership of elems. Arrays and
// sequences are not distinguished.
func NewArray(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: Array, elems: elems}
}

// NewMessage returns a message value of the given type that takes ownership
// of fields. Fields must be in schema order.
func NewMessage(id schema.MessageIdentifier, fields []Member) Value {
	if fields == nil {
		fields = []Member{}
	}
	return Value{kind: Message, fields: fields, msgType: id}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// Bool returns the value of a Bool.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == Bool
}

// Int returns the value of any signed integer kind.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case Int8, Int16, Int32, Int64:
		return v.i, true
	default:
		return 0, false
	}
}

// Uint returns the value of any unsigned integer kind, including Char.
func (v Value) Uint() (uint64, bool) {
	switch v.kind {
	case UInt8, UInt16, UInt32, UInt64, Char:
		return v.u, true
	default:
		return 0, false
	}
}

// Float returns the value of a Float32 or Float64.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Float32, Float64:
		return v.f, true
	default:
		return 0, false
	}
}

// Str returns the value of a Str.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == Str
}

// Elements returns a copy of the elements of an Array.
func (v Value) Elements() ([]Value, bool) {
	return slices.Clone(v.elems), v.kind == Array
}

// Fields returns a copy of the fields of a Message in schema order.
func (v Value) Fields() ([]Member, bool) {
	return slices.Clone(v.fields), v.kind == Message
}

// Type returns the message type of a Message.
func (v Value) Type() (schema.MessageIdentifier, bool) {
	return v.msgType, v.kind == Message
}

// Len returns the number of elements of an Array or fields of a Message.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.elems)
	case Message:
		return len(v.fields)
	default:
		return 0
	}
}

// Get returns the named field of a Message.
func (v Value) Get(name string) (Value, bool) {
	for _, m := range v.fields {
		if m.Name == name {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Index returns the i'th element of an Array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.elems) {
		return Value{}, false
	}
	return v.elems[i], true
}

// Interface returns the value as a native Go value. Messages become
// map[string]any and arrays []any.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Int8:
		return int8(v.i)
	case Int16:
		return int16(v.i)
	case Int32:
		return int32(v.i)
	case Int64:
		return v.i
	case UInt8, Char:
		return uint8(v.u)
	case UInt16:
		return uint16(v.u)
	case UInt32:
		return uint32(v.u)
	case UInt64:
		return v.u
	case Float32:
		return float32(v.f)
	case Float64:
		return v.f
	case Str:
		return v.s
	case Array:
		result := make([]any, len(v.elems))
		for i, e := range v.elems {
			result[i] = e.Interface()
		}
		return result
	case Message:
		result := make(map[string]any, len(v.fields))
		for _, m := range v.fields {
			result[m.Name] = m.Value.Interface()
		}
		return result
	default:
		return nil
	}
}

// String returns a compact rendering of scalar values, and the kind and
// length of composites.
func (v Value) String() string {
	switch v.kind {
	case Array:
		return fmt.Sprintf("array(%d)", len(v.elems))
	case Message:
		return v.msgType.String()
	case Str:
		return fmt.Sprintf("%q", v.s)
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
