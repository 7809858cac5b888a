package testutils

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

/*
General purpose test utilitites.
*/

////////////////////////////////////////////////////////////////////////////////

// Flatten concatenates slices of the same type.
func Flatten[T any](slices ...[]T) []T {
	result := []T{}
	for _, s := range slices {
		result = append(result, s...)
	}
	return result
}

// U8b returns a byte slice containing a single uint8 value.
func U8b(v uint8) []byte {
	return []byte{v}
}

// U16b returns a byte slice containing a single uint16 value.
func U16b(v uint16) []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return buf
}

// U32b returns a byte slice containing a single uint32 value.
func U32b(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func U64b(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func F32b(v float32) []byte {
	return U32b(math.Float32bits(v))
}

func F64b(v float64) []byte {
	return U64b(math.Float64bits(v))
}

// CDRHeader is the encapsulation header for little-endian CDR.
func CDRHeader() []byte {
	return []byte{0x00, 0x01, 0x00, 0x00}
}

// CDRWriter builds CDR payloads for tests. Each write aligns to the size of
// the value relative to the end of the encapsulation header, matching what a
// ROS2 middleware would produce.
type CDRWriter struct {
	buf   []byte
	order binary.AppendByteOrder
}

// NewCDRWriter returns a little-endian writer with the header already
// written.
func NewCDRWriter() *CDRWriter {
	return &CDRWriter{buf: CDRHeader(), order: binary.LittleEndian}
}

// NewBigEndianCDRWriter returns a big-endian writer with the header already
// written.
func NewBigEndianCDRWriter() *CDRWriter {
	return &CDRWriter{buf: []byte{0x00, 0x00, 0x00, 0x00}, order: binary.BigEndian}
}

// Align pads the buffer with zeros to a multiple of n.
func (w *CDRWriter) Align(n int) *CDRWriter {
	for (len(w.buf)-4)%n != 0 {
		w.buf = append(w.buf, 0)
	}
	return w
}

func (w *CDRWriter) Bool(v bool) *CDRWriter {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

func (w *CDRWriter) U8(v uint8) *CDRWriter {
	w.buf = append(w.buf, v)
	return w
}

func (w *CDRWriter) I8(v int8) *CDRWriter {
	return w.U8(uint8(v))
}

func (w *CDRWriter) U16(v uint16) *CDRWriter {
	w.Align(2)
	w.buf = w.order.AppendUint16(w.buf, v)
	return w
}

func (w *CDRWriter) I16(v int16) *CDRWriter {
	return w.U16(uint16(v))
}

func (w *CDRWriter) U32(v uint32) *CDRWriter {
	w.Align(4)
	w.buf = w.order.AppendUint32(w.buf, v)
	return w
}

func (w *CDRWriter) I32(v int32) *CDRWriter {
	return w.U32(uint32(v))
}

func (w *CDRWriter) U64(v uint64) *CDRWriter {
	w.Align(8)
	w.buf = w.order.AppendUint64(w.buf, v)
	return w
}

func (w *CDRWriter) I64(v int64) *CDRWriter {
	return w.U64(uint64(v))
}

func (w *CDRWriter) F32(v float32) *CDRWriter {
	return w.U32(math.Float32bits(v))
}

func (w *CDRWriter) F64(v float64) *CDRWriter {
	return w.U64(math.Float64bits(v))
}

// String writes a NUL-terminated string with its length prefix.
func (w *CDRWriter) String(s string) *CDRWriter {
	w.U32(uint32(len(s) + 1))
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
	return w
}

// WString writes a UTF-16 string with a code unit count prefix.
func (w *CDRWriter) WString(s string) *CDRWriter {
	units := utf16.Encode([]rune(s))
	w.U32(uint32(len(units)))
	for _, u := range units {
		w.buf = w.order.AppendUint16(w.buf, u)
	}
	return w
}

// Raw appends bytes without alignment.
func (w *CDRWriter) Raw(b ...byte) *CDRWriter {
	w.buf = append(w.buf, b...)
	return w
}

// Bytes returns the encoded payload.
func (w *CDRWriter) Bytes() []byte {
	return w.buf
}
