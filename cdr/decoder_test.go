package cdr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/ros2dyn/cdr"
	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/util/ros2msg"
	"github.com/wkalt/ros2dyn/util/schema"
	"github.com/wkalt/ros2dyn/util/testutils"
	"github.com/wkalt/ros2dyn/util/value"
	"golang.org/x/sync/errgroup"
)

var rootID = schema.NewIdentifier("test", "Root")

// graph resolves root against deps, given as alternating identifier and
// definition strings.
func graph(t *testing.T, root string, deps ...string) *resolver.Graph {
	t.Helper()
	s, err := ros2msg.Parse(rootID.Package, rootID.Name, []byte(root))
	require.NoError(t, err)
	registry := resolver.NewMapRegistry()
	for i := 0; i < len(deps); i += 2 {
		id, err := schema.ParseIdentifier(deps[i])
		require.NoError(t, err)
		dep, err := ros2msg.Parse(id.Package, id.Name, []byte(deps[i+1]))
		require.NoError(t, err)
		registry.Add(dep)
	}
	g, err := resolver.Resolve(s, registry)
	require.NoError(t, err)
	return g
}

func decode(t *testing.T, g *resolver.Graph, data []byte, opts ...cdr.Option) (value.Value, error) {
	t.Helper()
	return cdr.Decode(g, g.Root.ID, data, opts...)
}

func get(t *testing.T, v value.Value, name string) value.Value {
	t.Helper()
	field, ok := v.Get(name)
	require.True(t, ok, name)
	return field
}

func msg(id schema.MessageIdentifier, kv ...any) value.Value {
	members := []value.Member{}
	for i := 0; i < len(kv); i += 2 {
		members = append(members, value.Member{Name: kv[i].(string), Value: kv[i+1].(value.Value)})
	}
	return value.NewMessage(id, members)
}

func TestDecodeConcreteScenario(t *testing.T) {
	g := graph(t, "int32 a\nfloat64 b\n")
	data := testutils.Flatten(
		[]byte{0x00, 0x01, 0x00, 0x00},
		[]byte{0x01, 0x00, 0x00, 0x00},
		[]byte{0x00, 0x00, 0x00, 0x00},
		[]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04, 0x40},
	)
	v, err := decode(t, g, data)
	require.NoError(t, err)
	require.Equal(t, msg(rootID, "a", value.NewInt32(1), "b", value.NewFloat64(2.5)), v)
}

func TestDecodePrimitives(t *testing.T) {
	g := graph(t, `bool a
byte b
char c
int8 d
uint8 e
int16 f
uint16 g
int32 h
uint32 i
int64 j
uint64 k
float32 l
float64 m
string n
wstring o
int32 CONSTANT=7`)
	w := testutils.NewCDRWriter().
		Bool(true).
		U8(0xab).
		U8('x').
		I8(-5).
		U8(200).
		I16(-300).
		U16(60000).
		I32(-70000).
		U32(4000000000).
		I64(math.MinInt64).
		U64(math.MaxUint64).
		F32(1.5).
		F64(-2.25).
		String("hello").
		WString("héllo")
	v, err := decode(t, g, w.Bytes())
	require.NoError(t, err)
	require.Equal(t, msg(rootID,
		"a", value.NewBool(true),
		"b", value.NewUInt8(0xab),
		"c", value.NewChar('x'),
		"d", value.NewInt8(-5),
		"e", value.NewUInt8(200),
		"f", value.NewInt16(-300),
		"g", value.NewUInt16(60000),
		"h", value.NewInt32(-70000),
		"i", value.NewUInt32(4000000000),
		"j", value.NewInt64(math.MinInt64),
		"k", value.NewUInt64(math.MaxUint64),
		"l", value.NewFloat32(1.5),
		"m", value.NewFloat64(-2.25),
		"n", value.NewString("hello"),
		"o", value.NewString("héllo"),
	), v)
}

func TestDecodeBigEndian(t *testing.T) {
	g := graph(t, "uint8 a\nint16 b\nfloat64 c\nstring d")
	w := testutils.NewBigEndianCDRWriter().U8(1).I16(-2).F64(3.5).String("be")
	v, err := decode(t, g, w.Bytes())
	require.NoError(t, err)
	require.Equal(t, msg(rootID,
		"a", value.NewUInt8(1),
		"b", value.NewInt16(-2),
		"c", value.NewFloat64(3.5),
		"d", value.NewString("be"),
	), v)
}

func TestAlignment(t *testing.T) {
	t.Run("float64 after bool at top level", func(t *testing.T) {
		g := graph(t, "bool b\nfloat64 x")
		data := testutils.Flatten(
			testutils.CDRHeader(),
			[]byte{1, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			testutils.F64b(1.25),
		)
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, value.NewFloat64(1.25), get(t, v, "x"))
	})

	t.Run("nested message uses the global offset", func(t *testing.T) {
		g := graph(t, "bool b\nInner i", "test/Inner", "float64 x")
		data := testutils.Flatten(
			testutils.CDRHeader(),
			[]byte{1, 0, 0, 0, 0, 0, 0, 0},
			testutils.F64b(1.25),
		)
		v, err := decode(t, g, data)
		require.NoError(t, err)
		inner := get(t, v, "i")
		require.Equal(t, value.NewFloat64(1.25), get(t, inner, "x"))
	})

	t.Run("offset carries across sibling nested messages", func(t *testing.T) {
		g := graph(t, "Byte a\nInner b", "test/Byte", "uint8 v", "test/Inner", "uint8 c\nuint32 x")
		data := testutils.Flatten(
			testutils.CDRHeader(),
			[]byte{7, 8, 0, 0},
			testutils.U32b(99),
		)
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, value.NewUInt8(7), get(t, get(t, v, "a"), "v"))
		b := get(t, v, "b")
		require.Equal(t, value.NewUInt8(8), get(t, b, "c"))
		require.Equal(t, value.NewUInt32(99), get(t, b, "x"))
	})

	t.Run("padding contents are not validated", func(t *testing.T) {
		g := graph(t, "uint8 a\nuint16 b")
		data := testutils.Flatten(testutils.CDRHeader(), []byte{1, 0xee}, testutils.U16b(2))
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, value.NewUInt16(2), get(t, v, "b"))
	})

	t.Run("header bytes other than the kind are ignored", func(t *testing.T) {
		g := graph(t, "uint32 a")
		data := testutils.Flatten([]byte{0xaa, 0x01, 0xbb, 0xcc}, testutils.U32b(5))
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, value.NewUInt32(5), get(t, v, "a"))
	})
}

func TestNestedTime(t *testing.T) {
	g := graph(t,
		"builtin_interfaces/Time stamp\nfloat32 value",
		"builtin_interfaces/Time", "int32 sec\nuint32 nanosec",
	)
	data := []byte{0, 1, 0, 0, 157, 47, 136, 102, 42, 0, 0, 0, 219, 15, 73, 64}
	v, err := decode(t, g, data)
	require.NoError(t, err)
	stamp := get(t, v, "stamp")
	require.Equal(t, value.NewInt32(1720201117), get(t, stamp, "sec"))
	require.Equal(t, value.NewUInt32(42), get(t, stamp, "nanosec"))
	require.Equal(t, value.NewFloat32(math.Pi), get(t, v, "value"))
}

func TestStrings(t *testing.T) {
	g := graph(t, "string s\nuint8 after")
	cases := []struct {
		assertion string
		data      []byte
		expected  string
	}{
		{
			"nul is stripped",
			testutils.Flatten(testutils.CDRHeader(), testutils.U32b(5), []byte("test\x00"), []byte{9}),
			"test",
		},
		{
			"empty string with terminator",
			testutils.Flatten(testutils.CDRHeader(), testutils.U32b(1), []byte{0}, []byte{9}),
			"",
		},
		{
			"zero length prefix",
			testutils.Flatten(testutils.CDRHeader(), testutils.U32b(0), []byte{9}),
			"",
		},
		{
			"utf-8",
			testutils.NewCDRWriter().String("日本").U8(9).Bytes(),
			"日本",
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			v, err := decode(t, g, c.data)
			require.NoError(t, err)
			require.Equal(t, value.NewString(c.expected), get(t, v, "s"))
			require.Equal(t, value.NewUInt8(9), get(t, v, "after"))
		})
	}

	t.Run("truncated string", func(t *testing.T) {
		data := testutils.Flatten(testutils.CDRHeader(), testutils.U32b(10), []byte("abc"))
		_, err := decode(t, g, data)
		require.ErrorIs(t, err, cdr.TruncatedStringError{})
		var truncated cdr.TruncatedStringError
		require.ErrorAs(t, err, &truncated)
		require.Equal(t, 10, truncated.Length)
		require.Equal(t, 3, truncated.Remaining)
		require.Equal(t, "s", truncated.Path)
	})

	t.Run("truncated wstring", func(t *testing.T) {
		g := graph(t, "wstring w")
		data := testutils.Flatten(testutils.CDRHeader(), testutils.U32b(3), []byte{'a', 0, 'b'})
		_, err := decode(t, g, data)
		require.ErrorIs(t, err, cdr.TruncatedStringError{})
	})

	t.Run("surrogate pairs", func(t *testing.T) {
		g := graph(t, "wstring w")
		v, err := decode(t, g, testutils.NewCDRWriter().WString("a😀").Bytes())
		require.NoError(t, err)
		require.Equal(t, value.NewString("a😀"), get(t, v, "w"))
	})
}

func TestCollections(t *testing.T) {
	t.Run("fixed array has no prefix", func(t *testing.T) {
		g := graph(t, "int16[3] a\nuint8 b")
		data := testutils.NewCDRWriter().I16(1).I16(2).I16(3).U8(4).Bytes()
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, value.NewArray([]value.Value{
			value.NewInt16(1), value.NewInt16(2), value.NewInt16(3),
		}), get(t, v, "a"))
		require.Equal(t, value.NewUInt8(4), get(t, v, "b"))
	})

	t.Run("length prefix fidelity", func(t *testing.T) {
		g := graph(t, "uint8[] data")
		data := testutils.Flatten(testutils.CDRHeader(), testutils.U32b(5), []byte{1, 2, 3, 4, 5})
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, value.NewArray([]value.Value{
			value.NewUInt8(1), value.NewUInt8(2), value.NewUInt8(3), value.NewUInt8(4), value.NewUInt8(5),
		}), get(t, v, "data"))
	})

	t.Run("short sequence", func(t *testing.T) {
		g := graph(t, "uint8[] data")
		data := testutils.Flatten(testutils.CDRHeader(), testutils.U32b(5), []byte{1, 2, 3})
		_, err := decode(t, g, data)
		require.ErrorIs(t, err, cdr.UnexpectedEndOfBufferError{})
		var eob cdr.UnexpectedEndOfBufferError
		require.ErrorAs(t, err, &eob)
		require.Equal(t, 11, eob.Offset)
		require.Equal(t, "data[3]", eob.Path)
	})

	t.Run("empty sequence", func(t *testing.T) {
		g := graph(t, "float64[] data")
		data := testutils.Flatten(testutils.CDRHeader(), testutils.U32b(0))
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, value.NewArray(nil), get(t, v, "data"))
	})

	t.Run("bound enforcement", func(t *testing.T) {
		g := graph(t, "int32[<=2] data")
		data := testutils.Flatten(testutils.CDRHeader(), testutils.U32b(3))
		_, err := decode(t, g, data)
		var exceeded cdr.BoundExceededError
		require.ErrorAs(t, err, &exceeded)
		require.Equal(t, 2, exceeded.Bound)
		require.Equal(t, 3, exceeded.Actual)
		require.Equal(t, "data", exceeded.Path)
	})

	t.Run("bounded sequence within bound", func(t *testing.T) {
		g := graph(t, "int32[<=2] data")
		data := testutils.NewCDRWriter().U32(2).I32(7).I32(8).Bytes()
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, 2, get(t, v, "data").Len())
	})

	t.Run("sequence of strings", func(t *testing.T) {
		g := graph(t, "string<=8[] names")
		data := testutils.NewCDRWriter().U32(2).String("a").String("bcd").Bytes()
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, value.NewArray([]value.Value{
			value.NewString("a"), value.NewString("bcd"),
		}), get(t, v, "names"))
	})

	t.Run("sequence of messages with alignment", func(t *testing.T) {
		g := graph(t, "Point[] points", "test/Point", "uint8 tag\nfloat64 x")
		data := testutils.NewCDRWriter().
			U32(2).
			U8(1).F64(1.5).
			U8(2).F64(2.5).
			Bytes()
		v, err := decode(t, g, data)
		require.NoError(t, err)
		pointID := schema.NewIdentifier("test", "Point")
		require.Equal(t, value.NewArray([]value.Value{
			msg(pointID, "tag", value.NewUInt8(1), "x", value.NewFloat64(1.5)),
			msg(pointID, "tag", value.NewUInt8(2), "x", value.NewFloat64(2.5)),
		}), get(t, v, "points"))
	})

	t.Run("absurd length prefix", func(t *testing.T) {
		g := graph(t, "uint8[] data")
		data := testutils.Flatten(testutils.CDRHeader(), testutils.U32b(math.MaxUint32), []byte{1})
		_, err := decode(t, g, data)
		require.ErrorIs(t, err, cdr.UnexpectedEndOfBufferError{})
	})

	t.Run("max sequence length", func(t *testing.T) {
		g := graph(t, "uint8[] data")
		data := testutils.Flatten(testutils.CDRHeader(), testutils.U32b(4), []byte{1, 2, 3, 4})
		_, err := decode(t, g, data, cdr.WithMaxSequenceLength(3))
		require.ErrorIs(t, err, cdr.SequenceLengthError{})

		_, err = decode(t, g, data, cdr.WithMaxSequenceLength(4))
		require.NoError(t, err)
	})
}

func TestDecodeErrors(t *testing.T) {
	g := graph(t, "uint32 a\nInner inner", "test/Inner", "float64[2] xs")

	t.Run("unsupported encapsulation", func(t *testing.T) {
		for _, kind := range []byte{cdr.PLCDRLE, cdr.PLCDRBE, cdr.CDR2LE, cdr.DelimitedCDR2LE, 0x7f} {
			data := testutils.Flatten([]byte{0, kind, 0, 0}, testutils.U32b(1))
			_, err := decode(t, g, data)
			var unsupported cdr.UnsupportedEncapsulationError
			require.ErrorAs(t, err, &unsupported)
			require.Equal(t, kind, unsupported.Kind)
		}
	})

	t.Run("short header", func(t *testing.T) {
		_, err := decode(t, g, []byte{0, 1})
		require.ErrorIs(t, err, cdr.UnexpectedEndOfBufferError{})
	})

	t.Run("end of buffer in nested field", func(t *testing.T) {
		data := testutils.Flatten(testutils.CDRHeader(), testutils.U32b(1), []byte{0, 0, 0, 0}, testutils.F64b(1))
		_, err := decode(t, g, data)
		var eob cdr.UnexpectedEndOfBufferError
		require.ErrorAs(t, err, &eob)
		require.Equal(t, "inner.xs[1]", eob.Path)
		require.Equal(t, 20, eob.Offset)
	})

	t.Run("end of buffer in padding", func(t *testing.T) {
		g := graph(t, "uint8 a\nuint32 b")
		data := testutils.Flatten(testutils.CDRHeader(), []byte{1, 0})
		_, err := decode(t, g, data)
		require.ErrorIs(t, err, cdr.UnexpectedEndOfBufferError{})
	})

	t.Run("unknown root", func(t *testing.T) {
		_, err := cdr.Decode(g, schema.NewIdentifier("test", "Missing"), testutils.CDRHeader())
		require.ErrorIs(t, err, resolver.UnresolvedTypeError{})
	})
}

func TestTrailingBytes(t *testing.T) {
	g := graph(t, "uint8 a")
	cases := []struct {
		assertion string
		data      []byte
		strict    bool
		ok        bool
	}{
		{"exact", testutils.Flatten(testutils.CDRHeader(), []byte{1}), true, true},
		{"alignment padding", testutils.Flatten(testutils.CDRHeader(), []byte{1, 0, 0, 0}), true, true},
		{"extra bytes strict", testutils.Flatten(testutils.CDRHeader(), []byte{1, 0, 0, 0, 0}), true, false},
		{"extra bytes tolerated", testutils.Flatten(testutils.CDRHeader(), []byte{1, 0, 0, 0, 0}), false, true},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			opts := []cdr.Option{}
			if c.strict {
				opts = append(opts, cdr.WithStrictTrailingBytes())
			}
			v, err := decode(t, g, c.data, opts...)
			if !c.ok {
				var trailing cdr.TrailingBytesError
				require.ErrorAs(t, err, &trailing)
				require.Equal(t, 5, trailing.Offset)
				require.Equal(t, 4, trailing.Count)
				return
			}
			require.NoError(t, err)
			require.Equal(t, value.NewUInt8(1), get(t, v, "a"))
		})
	}
}

func TestEmptyMessage(t *testing.T) {
	empty := []string{"test/Empty", "int32 CONSTANT=1"}
	t.Run("placeholder byte", func(t *testing.T) {
		g := graph(t, "Empty e\nuint8 after", empty...)
		data := testutils.Flatten(testutils.CDRHeader(), []byte{0, 3})
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, 0, get(t, v, "e").Len())
		require.Equal(t, value.NewUInt8(3), get(t, v, "after"))
	})
	t.Run("strict trailing bytes after placeholder", func(t *testing.T) {
		g := graph(t, "Empty e", empty...)
		_, err := decode(t, g, testutils.Flatten(testutils.CDRHeader(), []byte{0, 0, 0, 0}), cdr.WithStrictTrailingBytes())
		require.NoError(t, err)
		_, err = decode(t, g, testutils.Flatten(testutils.CDRHeader(), []byte{0, 0, 0, 0, 0}), cdr.WithStrictTrailingBytes())
		var trailing cdr.TrailingBytesError
		require.ErrorAs(t, err, &trailing)
		require.Equal(t, 5, trailing.Offset)
		require.Equal(t, 4, trailing.Count)
	})
	t.Run("missing placeholder", func(t *testing.T) {
		g := graph(t, "Empty e", empty...)
		_, err := decode(t, g, testutils.CDRHeader())
		require.ErrorIs(t, err, cdr.UnexpectedEndOfBufferError{})
	})
	t.Run("sequence of empty messages", func(t *testing.T) {
		g := graph(t, "Empty[] xs\nuint8 after", empty...)
		data := testutils.Flatten(testutils.CDRHeader(), []byte{2, 0, 0, 0, 0, 0, 42})
		v, err := decode(t, g, data)
		require.NoError(t, err)
		require.Equal(t, 2, get(t, v, "xs").Len())
		require.Equal(t, value.NewUInt8(42), get(t, v, "after"))
	})
	t.Run("sequence length exceeding the buffer", func(t *testing.T) {
		g := graph(t, "Empty[] xs", empty...)
		for _, n := range []uint32{2, 2_000_000, math.MaxUint32} {
			data := testutils.Flatten(testutils.CDRHeader(), testutils.U32b(n), []byte{0})
			_, err := decode(t, g, data)
			var eob cdr.UnexpectedEndOfBufferError
			require.ErrorAs(t, err, &eob)
			require.Equal(t, "xs[1]", eob.Path)
			require.Equal(t, 9, eob.Offset)
		}
	})
}

func TestConcurrentDecode(t *testing.T) {
	g := graph(t,
		"builtin_interfaces/Time stamp\nstring frame\nfloat64[] values",
		"builtin_interfaces/Time", "int32 sec\nuint32 nanosec",
	)
	decoder, err := cdr.NewDecoder(g, g.Root.ID)
	require.NoError(t, err)

	group := &errgroup.Group{}
	for i := 0; i < 16; i++ {
		i := i
		group.Go(func() error {
			w := testutils.NewCDRWriter().I32(int32(i)).U32(0).String("frame").U32(uint32(i))
			for j := 0; j < i; j++ {
				w.F64(float64(j))
			}
			v, err := decoder.Decode(w.Bytes())
			if err != nil {
				return err
			}
			stamp, _ := v.Get("stamp")
			sec, _ := stamp.Get("sec")
			n, _ := sec.Int()
			values, _ := v.Get("values")
			if n != int64(i) || values.Len() != i {
				t.Errorf("decoded %d with %d values, expected %d", n, values.Len(), i)
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())
}
