package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/ros2dyn/util/schema"
)

func TestParseIdentifier(t *testing.T) {
	cases := []struct {
		assertion string
		input     string
		output    schema.MessageIdentifier
		ok        bool
	}{
		{"short form", "geometry_msgs/Point", schema.NewIdentifier("geometry_msgs", "Point"), true},
		{"long form", "geometry_msgs/msg/Point", schema.NewIdentifier("geometry_msgs", "Point"), true},
		{"service path", "std_srvs/srv/Empty", schema.MessageIdentifier{}, false},
		{"no package", "Point", schema.MessageIdentifier{}, false},
		{"uppercase package", "Geometry/Point", schema.MessageIdentifier{}, false},
		{"double underscore", "geometry__msgs/Point", schema.MessageIdentifier{}, false},
		{"leading digit", "1pkg/Point", schema.MessageIdentifier{}, false},
		{"empty name", "pkg/", schema.MessageIdentifier{}, false},
		{"too many parts", "a/b/c/d", schema.MessageIdentifier{}, false},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			id, err := schema.ParseIdentifier(c.input)
			if !c.ok {
				require.ErrorIs(t, err, schema.InvalidIdentifierPathError{})
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.output, id)
		})
	}
}

func TestTypeFormat(t *testing.T) {
	point := schema.Complex(schema.NewIdentifier("geometry_msgs", "Point"))
	cases := []struct {
		assertion string
		typ       schema.Type
		output    string
	}{
		{"primitive", schema.Primitive(schema.INT32), "int32"},
		{"byte", schema.Primitive(schema.BYTE), "byte"},
		{"string", schema.String(0), "string"},
		{"bounded string", schema.String(5), "string<=5"},
		{"bounded wstring", schema.WString(5), "wstring<=5"},
		{"array", schema.Array(schema.Primitive(schema.UINT8), 16), "uint8[16]"},
		{"sequence", schema.Sequence(schema.Primitive(schema.FLOAT64), 0), "float64[]"},
		{"bounded sequence", schema.Sequence(schema.String(3), 4), "string<=3[<=4]"},
		{"complex", point, "geometry_msgs/Point"},
		{"complex array", schema.Array(point, 2), "geometry_msgs/Point[2]"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			require.Equal(t, c.output, c.typ.Format())
		})
	}
}

func TestKind(t *testing.T) {
	t.Run("keywords", func(t *testing.T) {
		for _, keyword := range []string{
			"bool", "byte", "char", "int8", "uint8", "int16", "uint16", "int32",
			"uint32", "int64", "uint64", "float32", "float64", "string", "wstring",
		} {
			kind, ok := schema.KindFromKeyword(keyword)
			require.True(t, ok, keyword)
			require.Equal(t, keyword, kind.String())
		}
	})
	t.Run("non-keywords", func(t *testing.T) {
		for _, keyword := range []string{"array", "sequence", "complex", "time", "Header", ""} {
			_, ok := schema.KindFromKeyword(keyword)
			require.False(t, ok, keyword)
		}
	})
	t.Run("sizes", func(t *testing.T) {
		require.Equal(t, 1, schema.BOOL.Size())
		require.Equal(t, 1, schema.CHAR.Size())
		require.Equal(t, 2, schema.UINT16.Size())
		require.Equal(t, 4, schema.FLOAT32.Size())
		require.Equal(t, 8, schema.INT64.Size())
		require.Equal(t, 0, schema.STRING.Size())
		require.Equal(t, 0, schema.COMPLEX.Size())
	})
}

func TestSchema(t *testing.T) {
	point := schema.NewIdentifier("geometry_msgs", "Point")
	header := schema.NewIdentifier("std_msgs", "Header")
	s := &schema.Schema{
		ID: schema.NewIdentifier("pkg", "Msg"),
		Fields: []schema.Field{
			{Name: "header", Type: schema.Complex(header)},
			{Name: "count", Type: schema.Primitive(schema.UINT32)},
			{Name: "points", Type: schema.Sequence(schema.Complex(point), 0)},
			{Name: "grid", Type: schema.Array(schema.Complex(point), 4)},
		},
		Constants: []schema.Constant{
			{Name: "MAX", Type: schema.Primitive(schema.UINT32), Value: uint64(10), Raw: "10"},
		},
	}

	t.Run("dependencies", func(t *testing.T) {
		require.Equal(t, []schema.MessageIdentifier{header, point, point}, s.Dependencies())
	})
	t.Run("constant lookup", func(t *testing.T) {
		c, ok := s.Constant("MAX")
		require.True(t, ok)
		require.Equal(t, uint64(10), c.Value)
		_, ok = s.Constant("MIN")
		require.False(t, ok)
	})
	t.Run("field lookup", func(t *testing.T) {
		f, ok := s.Field("count")
		require.True(t, ok)
		require.Equal(t, schema.UINT32, f.Type.Kind)
		_, ok = s.Field("missing")
		require.False(t, ok)
	})
	t.Run("string", func(t *testing.T) {
		expected := `uint32 MAX=10
std_msgs/Header header
uint32 count
geometry_msgs/Point[] points
geometry_msgs/Point[4] grid
`
		require.Equal(t, expected, s.String())
	})
	t.Run("string keeps defaults", func(t *testing.T) {
		withDefault := &schema.Schema{
			Fields: []schema.Field{
				{Name: "gain", Type: schema.Primitive(schema.FLOAT64), Default: "0.5"},
				{Name: "label", Type: schema.String(0)},
			},
		}
		require.Equal(t, "float64 gain 0.5\nstring label\n", withDefault.String())
	})
	t.Run("service identifiers", func(t *testing.T) {
		id := schema.NewIdentifier("pkg", "Srv")
		require.Equal(t, "pkg/Srv_Request", schema.RequestID(id).String())
		require.Equal(t, "pkg/Srv_Response", schema.ResponseID(id).String())
	})
}
