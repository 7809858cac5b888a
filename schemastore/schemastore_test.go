package schemastore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/ros2dyn/fingerprint"
	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/schemastore"
	"github.com/wkalt/ros2dyn/storage"
	"github.com/wkalt/ros2dyn/util/ros2msg"
	"github.com/wkalt/ros2dyn/util/schema"
)

func parse(t *testing.T, pkg, name, text string) *schema.Schema {
	t.Helper()
	s, err := ros2msg.Parse(pkg, name, []byte(text))
	require.NoError(t, err)
	return s
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	store := schemastore.NewSchemaStore(storage.NewMemStore(), 1024)
	point := parse(t, "geometry_msgs", "Point", "float64 x\nfloat64 y\nfloat64 z")
	require.NoError(t, store.Put(ctx, point))

	t.Run("cached", func(t *testing.T) {
		got, err := store.Get(ctx, point.ID)
		require.NoError(t, err)
		assert.Equal(t, point, got)
	})

	t.Run("reparsed from storage", func(t *testing.T) {
		cold := schemastore.NewSchemaStore(storage.NewMemStore(), 0)
		require.NoError(t, cold.Put(ctx, point))
		got, err := cold.Get(ctx, point.ID)
		require.NoError(t, err)
		assert.Equal(t, point.Fields, got.Fields)
		assert.Equal(t, point.Text, got.Text)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := store.Get(ctx, schema.NewIdentifier("geometry_msgs", "Pose"))
		require.ErrorIs(t, err, resolver.ErrNotFound)
	})
}

func TestPutGraph(t *testing.T) {
	ctx := context.Background()
	provider := storage.NewMemStore()
	store := schemastore.NewSchemaStore(provider, 1024)

	header := parse(t, "std_msgs", "Header", "builtin_interfaces/Time stamp\nstring frame_id")
	tm := parse(t, "builtin_interfaces", "Time", "int32 sec\nuint32 nanosec")
	root := parse(t, "sensor_msgs", "Temperature", "Header header\nfloat64 temperature\nfloat64 variance")

	graph, err := resolver.Resolve(root, resolver.NewMapRegistry(header, tm))
	require.NoError(t, err)
	require.NoError(t, store.PutGraph(ctx, graph))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []schema.MessageIdentifier{
		tm.ID, root.ID, header.ID,
	}, ids)

	record, err := store.GetRecord(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, fingerprint.Of(graph).String(), record.Fingerprint)
	assert.Equal(t, root.Text, record.Text)

	tmGraph, err := resolver.Resolve(tm, resolver.NewMapRegistry())
	require.NoError(t, err)
	record, err = store.GetRecord(ctx, tm.ID)
	require.NoError(t, err)
	assert.Equal(t, fingerprint.Of(tmGraph).String(), record.Fingerprint)

	t.Run("registry resolves from a cold store", func(t *testing.T) {
		cold := schemastore.NewSchemaStore(provider, 1024)
		loaded, err := cold.Get(ctx, root.ID)
		require.NoError(t, err)
		resolved, err := resolver.Resolve(loaded, cold.Registry(ctx))
		require.NoError(t, err)
		assert.Equal(t, graph.CanonicalText(), resolved.CanonicalText())
		assert.Equal(t, fingerprint.Of(graph), fingerprint.Of(resolved))
	})
}

func TestRegistryUnresolved(t *testing.T) {
	ctx := context.Background()
	store := schemastore.NewSchemaStore(storage.NewMemStore(), 1024)
	root := parse(t, "pkg_a", "Foo", "pkg_b/Bar bar")
	_, err := resolver.Resolve(root, store.Registry(ctx))
	require.ErrorIs(t, err, resolver.UnresolvedTypeError{})
}

func TestInvalidRecords(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		assertion string
		object    string
		data      string
	}{
		{"not json", "schemas/pkg_a/Foo.json", "{"},
		{"mismatched identifier", "schemas/pkg_a/Foo.json", `{"package":"pkg_a","name":"Bar","text":""}`},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			provider := storage.NewMemStore()
			require.NoError(t, provider.Put(ctx, c.object, []byte(c.data)))
			store := schemastore.NewSchemaStore(provider, 1024)
			_, err := store.Get(ctx, schema.NewIdentifier("pkg_a", "Foo"))
			require.ErrorIs(t, err, schemastore.InvalidRecordError{})
		})
	}
}

func TestListSkipsForeignObjects(t *testing.T) {
	ctx := context.Background()
	provider := storage.NewMemStore()
	require.NoError(t, provider.Put(ctx, "schemas/README", []byte("hi")))
	require.NoError(t, provider.Put(ctx, "other/pkg_a/Foo.json", []byte("{}")))
	store := schemastore.NewSchemaStore(provider, 1024)
	require.NoError(t, store.Put(ctx, parse(t, "pkg_a", "Foo", "int32 x")))
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []schema.MessageIdentifier{schema.NewIdentifier("pkg_a", "Foo")}, ids)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := schemastore.NewSchemaStore(storage.NewMemStore(), 1024)
	foo := parse(t, "pkg_a", "Foo", "int32 x")
	require.NoError(t, store.Put(ctx, foo))
	require.NoError(t, store.Delete(ctx, foo.ID))
	_, err := store.Get(ctx, foo.ID)
	require.ErrorIs(t, err, resolver.ErrNotFound)
}
