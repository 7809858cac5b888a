package cdr

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/util/schema"
	"github.com/wkalt/ros2dyn/util/value"
)

/*
Package cdr decodes CDR-encoded ROS2 messages into dynamic values, guided by
a resolved schema graph.

A payload starts with a 4-byte encapsulation header. Byte 1 selects the
representation and with it the byte order; bytes 0, 2 and 3 are ignored. The
remainder is a stream of fields in declaration order. Each primitive is
aligned to its own size, measured from the first byte after the header. The
same cursor is used for nested messages, so a nested message's fields are
aligned relative to the start of the payload, not the start of the nested
message.

	string        uint32 length including NUL, bytes, NUL
	wstring       uint32 count of UTF-16 code units, code units, no terminator
	T[N]          N elements, no prefix
	T[] / T[<=N]  uint32 count, elements
*/

////////////////////////////////////////////////////////////////////////////////

const headerSize = 4

// Encapsulation kinds, from the RTPS and XTypes specifications.
const (
	CDRBE           byte = 0x00
	CDRLE           byte = 0x01
	PLCDRBE         byte = 0x02
	PLCDRLE         byte = 0x03
	CDR2BE          byte = 0x10
	CDR2LE          byte = 0x11
	PLCDR2BE        byte = 0x12
	PLCDR2LE        byte = 0x13
	DelimitedCDR2BE byte = 0x14
	DelimitedCDR2LE byte = 0x15
)

// nolint:gochecknoglobals
var encapsulationNames = map[byte]string{
	CDRBE:           "CDR_BE",
	CDRLE:           "CDR_LE",
	PLCDRBE:         "PL_CDR_BE",
	PLCDRLE:         "PL_CDR_LE",
	CDR2BE:          "CDR2_BE",
	CDR2LE:          "CDR2_LE",
	PLCDR2BE:        "PL_CDR2_BE",
	PLCDR2LE:        "PL_CDR2_LE",
	DelimitedCDR2BE: "DELIMITED_CDR2_BE",
	DelimitedCDR2LE: "DELIMITED_CDR2_LE",
}

// byteOrders lists the supported encapsulation kinds.
// nolint:gochecknoglobals
var byteOrders = map[byte]binary.ByteOrder{
	CDRBE: binary.BigEndian,
	CDRLE: binary.LittleEndian,
}

func encapsulationName(kind byte) string {
	if name, ok := encapsulationNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("0x%02x", kind)
}

// Decoder decodes payloads of a single root type. A Decoder is safe for
// concurrent use.
type Decoder struct {
	graph  *resolver.Graph
	root   *schema.Schema
	config config
}

// NewDecoder returns a decoder for messages of type root. The root must be
// present in the graph.
func NewDecoder(graph *resolver.Graph, root schema.MessageIdentifier, opts ...Option) (*Decoder, error) {
	s, ok := graph.Lookup(root)
	if !ok {
		return nil, resolver.UnresolvedTypeError{ID: root, Referrer: graph.Root.ID}
	}
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Decoder{graph: graph, root: s, config: cfg}, nil
}

// Decode decodes a single payload of the root type in graph.
func Decode(
	graph *resolver.Graph,
	root schema.MessageIdentifier,
	data []byte,
	opts ...Option,
) (value.Value, error) {
	decoder, err := NewDecoder(graph, root, opts...)
	if err != nil {
		return value.Value{}, err
	}
	return decoder.Decode(data)
}

// Decode decodes a single payload. The returned value does not reference
// data.
func (d *Decoder) Decode(data []byte) (value.Value, error) {
	if len(data) < headerSize {
		return value.Value{}, UnexpectedEndOfBufferError{Offset: len(data)}
	}
	order, ok := byteOrders[data[1]]
	if !ok {
		return value.Value{}, UnsupportedEncapsulationError{Kind: data[1]}
	}
	c := &cursor{
		data:   data,
		pos:    headerSize,
		order:  order,
		config: d.config,
		graph:  d.graph,
	}
	v, err := c.message(d.root)
	if err != nil {
		return value.Value{}, err
	}
	if d.config.strictTrailingBytes {
		pad := padding(c.pos, 4)
		if remaining := len(data) - c.pos; remaining > pad {
			return value.Value{}, TrailingBytesError{Offset: c.pos, Count: remaining}
		}
	}
	return v, nil
}

// padding returns the number of bytes needed to align pos to n, relative to
// the end of the encapsulation header.
func padding(pos int, n int) int {
	return (n - (pos-headerSize)%n) % n
}

type segment struct {
	name  string
	index int
}

// cursor holds the state of a single decode call.
type cursor struct {
	data   []byte
	pos    int
	order  binary.ByteOrder
	config config
	graph  *resolver.Graph
	path   []segment
}

func (c *cursor) pathString() string {
	sb := &strings.Builder{}
	for _, seg := range c.path {
		if seg.index >= 0 {
			sb.WriteString("[")
			sb.WriteString(strconv.Itoa(seg.index))
			sb.WriteString("]")
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(seg.name)
	}
	return sb.String()
}

func (c *cursor) eob() error {
	return UnexpectedEndOfBufferError{Offset: c.pos, Path: c.pathString()}
}

// take aligns the cursor to align and returns the next n bytes.
func (c *cursor) take(align int, n int) ([]byte, error) {
	if align > 1 {
		pad := padding(c.pos, align)
		if c.pos+pad > len(c.data) {
			return nil, c.eob()
		}
		c.pos += pad
	}
	if c.pos+n > len(c.data) {
		return nil, c.eob()
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) readUint32() (uint32, error) {
	b, err := c.take(4, 4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

func (c *cursor) message(s *schema.Schema) (value.Value, error) {
	if len(s.Fields) == 0 {
		// structures without members carry a single placeholder byte.
		if _, err := c.take(1, 1); err != nil {
			return value.Value{}, err
		}
		return value.NewMessage(s.ID, nil), nil
	}
	members := make([]value.Member, len(s.Fields))
	for i, field := range s.Fields {
		c.path = append(c.path, segment{name: field.Name, index: -1})
		v, err := c.field(s, field.Type)
		if err != nil {
			return value.Value{}, err
		}
		c.path = c.path[:len(c.path)-1]
		members[i] = value.Member{Name: field.Name, Value: v}
	}
	return value.NewMessage(s.ID, members), nil
}

func (c *cursor) field(parent *schema.Schema, t schema.Type) (value.Value, error) {
	switch t.Kind {
	case schema.ARRAY:
		return c.elements(parent, *t.Elem, t.Length)
	case schema.SEQUENCE:
		offset := c.pos
		n, err := c.readUint32()
		if err != nil {
			return value.Value{}, err
		}
		length := int(n)
		if t.Bound > 0 && length > t.Bound {
			return value.Value{}, BoundExceededError{
				Bound:  t.Bound,
				Actual: length,
				Offset: offset,
				Path:   c.pathString(),
			}
		}
		if limit := c.config.maxSequenceLength; limit > 0 && length > limit {
			return value.Value{}, SequenceLengthError{
				Max:    limit,
				Actual: length,
				Offset: offset,
				Path:   c.pathString(),
			}
		}
		return c.elements(parent, *t.Elem, length)
	case schema.COMPLEX:
		s, ok := c.graph.Lookup(t.Ref)
		if !ok {
			return value.Value{}, resolver.UnresolvedTypeError{ID: t.Ref, Referrer: parent.ID}
		}
		return c.message(s)
	case schema.STRING:
		return c.readString()
	case schema.WSTRING:
		return c.readWString()
	default:
		return c.primitive(t.Kind)
	}
}

func (c *cursor) elements(parent *schema.Schema, elem schema.Type, n int) (value.Value, error) {
	// every element consumes at least one byte, so the remaining buffer
	// bounds both the preallocation and the iterations.
	capacity := n
	if remaining := len(c.data) - c.pos; capacity > remaining {
		capacity = remaining
	}
	elems := make([]value.Value, 0, capacity)
	c.path = append(c.path, segment{index: 0})
	for i := 0; i < n; i++ {
		c.path[len(c.path)-1].index = i
		v, err := c.field(parent, elem)
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, v)
	}
	c.path = c.path[:len(c.path)-1]
	return value.NewArray(elems), nil
}

func (c *cursor) readString() (value.Value, error) {
	n, err := c.readUint32()
	if err != nil {
		return value.Value{}, err
	}
	length := int(n)
	if length == 0 {
		return value.NewString(""), nil
	}
	if remaining := len(c.data) - c.pos; length > remaining {
		return value.Value{}, TruncatedStringError{
			Offset:    c.pos,
			Path:      c.pathString(),
			Length:    length,
			Remaining: remaining,
		}
	}
	b := c.data[c.pos : c.pos+length]
	c.pos += length
	if b[length-1] == 0 {
		b = b[:length-1]
	}
	return value.NewString(string(b)), nil
}

func (c *cursor) readWString() (value.Value, error) {
	n, err := c.readUint32()
	if err != nil {
		return value.Value{}, err
	}
	length := int(n)
	if remaining := len(c.data) - c.pos; length > remaining/2 {
		return value.Value{}, TruncatedStringError{
			Offset:    c.pos,
			Path:      c.pathString(),
			Length:    length,
			Remaining: remaining,
		}
	}
	units := make([]uint16, length)
	for i := range units {
		units[i] = c.order.Uint16(c.data[c.pos:])
		c.pos += 2
	}
	return value.NewString(string(utf16.Decode(units))), nil
}

func (c *cursor) primitive(kind schema.Kind) (value.Value, error) {
	size := kind.Size()
	if size == 0 {
		return value.Value{}, fmt.Errorf("cannot decode %s at %s", kind, c.pathString())
	}
	b, err := c.take(size, size)
	if err != nil {
		return value.Value{}, err
	}
	switch kind {
	case schema.BOOL:
		return value.NewBool(b[0] != 0), nil
	case schema.BYTE, schema.UINT8:
		return value.NewUInt8(b[0]), nil
	case schema.CHAR:
		return value.NewChar(b[0]), nil
	case schema.INT8:
		return value.NewInt8(int8(b[0])), nil
	case schema.INT16:
		return value.NewInt16(int16(c.order.Uint16(b))), nil
	case schema.UINT16:
		return value.NewUInt16(c.order.Uint16(b)), nil
	case schema.INT32:
		return value.NewInt32(int32(c.order.Uint32(b))), nil
	case schema.UINT32:
		return value.NewUInt32(c.order.Uint32(b)), nil
	case schema.FLOAT32:
		return value.NewFloat32(math.Float32frombits(c.order.Uint32(b))), nil
	case schema.INT64:
		return value.NewInt64(int64(c.order.Uint64(b))), nil
	case schema.UINT64:
		return value.NewUInt64(c.order.Uint64(b)), nil
	case schema.FLOAT64:
		return value.NewFloat64(math.Float64frombits(c.order.Uint64(b))), nil
	default:
		return value.Value{}, fmt.Errorf("cannot decode %s at %s", kind, c.pathString())
	}
}
