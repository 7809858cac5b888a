package schemastore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/goccy/go-json"
	"github.com/wkalt/ros2dyn/fingerprint"
	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/storage"
	"github.com/wkalt/ros2dyn/util"
	"github.com/wkalt/ros2dyn/util/log"
	"github.com/wkalt/ros2dyn/util/ros2msg"
	"github.com/wkalt/ros2dyn/util/schema"
)

/*
Package schemastore persists parsed message definitions in a storage
provider, so that definitions discovered once (from an MCAP file or a
msg path) are available to later invocations without their sources.

Each definition is stored as a JSON record under
"schemas/<package>/<Name>.json". The record holds the raw definition text,
which is reparsed on load, and the fingerprint of the definition's resolved
graph when it was known at write time. Parsed schemas are held in a
cost-weighted LRU cache keyed by identifier, with cost equal to the length of
the definition text.
*/

////////////////////////////////////////////////////////////////////////////////

const prefix = "schemas/"

// SchemaStore is a schema registry backed by a storage provider.
type SchemaStore struct {
	store storage.Provider
	cache *util.LRU[schema.MessageIdentifier, *schema.Schema]
}

// Record is the stored form of a message definition.
type Record struct {
	Package     string `json:"package"`
	Name        string `json:"name"`
	Text        string `json:"text"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// NewSchemaStore returns a schema store over the given provider, caching up
// to cacheBytes of definition text.
func NewSchemaStore(store storage.Provider, cacheBytes int64) *SchemaStore {
	return &SchemaStore{
		store: store,
		cache: util.NewLRU[schema.MessageIdentifier, *schema.Schema](cacheBytes),
	}
}

func objectID(id schema.MessageIdentifier) string {
	return prefix + id.Package + "/" + id.Name + ".json"
}

func identifierFromObject(object string) (schema.MessageIdentifier, error) {
	rest, ok := strings.CutPrefix(object, prefix)
	if !ok || path.Ext(rest) != ".json" {
		return schema.MessageIdentifier{}, InvalidRecordError{Object: object, Reason: "unexpected object name"}
	}
	id, err := schema.ParseIdentifier(strings.TrimSuffix(rest, ".json"))
	if err != nil {
		return schema.MessageIdentifier{}, InvalidRecordError{Object: object, Reason: err.Error()}
	}
	return id, nil
}

// Put stores a single definition without a fingerprint.
func (s *SchemaStore) Put(ctx context.Context, sch *schema.Schema) error {
	return s.put(ctx, sch, "")
}

// PutGraph stores every definition in a resolved graph. Each record carries
// the fingerprint of its own subgraph.
func (s *SchemaStore) PutGraph(ctx context.Context, graph *resolver.Graph) error {
	registry := resolver.NewMapRegistry()
	for _, sch := range graph.Schemas {
		registry.Add(sch)
	}
	for id, sch := range graph.Schemas {
		sub, err := resolver.Resolve(sch, registry)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", id, err)
		}
		if err := s.put(ctx, sch, fingerprint.Of(sub).String()); err != nil {
			return err
		}
	}
	log.Debugw(ctx, "stored schema graph", "root", graph.Root.ID.String(), "count", len(graph.Schemas))
	return nil
}

func (s *SchemaStore) put(ctx context.Context, sch *schema.Schema, fp string) error {
	record := Record{
		Package:     sch.ID.Package,
		Name:        sch.ID.Name,
		Text:        sch.Text,
		Fingerprint: fp,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", sch.ID, err)
	}
	if err := s.store.Put(ctx, objectID(sch.ID), data); err != nil {
		return fmt.Errorf("failed to store %s: %w", sch.ID, err)
	}
	s.cache.Put(sch.ID, sch, int64(len(sch.Text)))
	return nil
}

// GetRecord returns the stored record for id. If no record exists, the
// returned error wraps resolver.ErrNotFound.
func (s *SchemaStore) GetRecord(ctx context.Context, id schema.MessageIdentifier) (*Record, error) {
	data, err := s.store.Get(ctx, objectID(id))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", resolver.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load %s: %w", id, err)
	}
	record := &Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, InvalidRecordError{Object: objectID(id), Reason: err.Error()}
	}
	if record.Package != id.Package || record.Name != id.Name {
		return nil, InvalidRecordError{
			Object: objectID(id),
			Reason: fmt.Sprintf("record names %s/%s", record.Package, record.Name),
		}
	}
	return record, nil
}

// Get returns the parsed schema for id. If no record exists, the returned
// error wraps resolver.ErrNotFound.
func (s *SchemaStore) Get(ctx context.Context, id schema.MessageIdentifier) (*schema.Schema, error) {
	if sch, ok := s.cache.Get(id); ok {
		return sch, nil
	}
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	sch, err := ros2msg.Parse(id.Package, id.Name, []byte(record.Text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored %s: %w", id, err)
	}
	s.cache.Put(id, sch, int64(len(sch.Text)))
	log.Debugw(ctx, "loaded schema", "id", id.String(), "store", s.store.String())
	return sch, nil
}

// List returns the identifiers of all stored definitions, sorted by package
// and name.
func (s *SchemaStore) List(ctx context.Context) ([]schema.MessageIdentifier, error) {
	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	ids := make([]schema.MessageIdentifier, 0, len(objects))
	for _, object := range objects {
		id, err := identifierFromObject(object)
		if err != nil {
			log.Warnw(ctx, "skipping object", "object", object, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes a stored definition.
func (s *SchemaStore) Delete(ctx context.Context, id schema.MessageIdentifier) error {
	s.cache.Delete(id)
	if err := s.store.Delete(ctx, objectID(id)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return nil
}

// Registry returns a resolver.Registry reading from the store with ctx.
func (s *SchemaStore) Registry(ctx context.Context) resolver.Registry {
	return registry{ctx: ctx, store: s}
}

type registry struct {
	ctx   context.Context
	store *SchemaStore
}

func (r registry) Lookup(id schema.MessageIdentifier) (*schema.Schema, error) {
	return r.store.Get(r.ctx, id)
}
