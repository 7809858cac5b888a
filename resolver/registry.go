package resolver

import (
	"fmt"
	"sync"

	"github.com/wkalt/ros2dyn/util/schema"
)

////////////////////////////////////////////////////////////////////////////////

// Registry looks up message schemas by identifier. Implementations must
// return an error wrapping ErrNotFound when the schema is absent. A registry
// is only read during resolution.
type Registry interface {
	Lookup(id schema.MessageIdentifier) (*schema.Schema, error)
}

// MapRegistry is an in-memory Registry.
type MapRegistry struct {
	mtx     sync.RWMutex
	schemas map[schema.MessageIdentifier]*schema.Schema
}

// NewMapRegistry returns a registry holding the supplied schemas.
func NewMapRegistry(schemas ...*schema.Schema) *MapRegistry {
	r := &MapRegistry{schemas: make(map[schema.MessageIdentifier]*schema.Schema, len(schemas))}
	for _, s := range schemas {
		r.schemas[s.ID] = s
	}
	return r
}

// Add stores a schema, replacing any existing schema with the same
// identifier.
func (r *MapRegistry) Add(s *schema.Schema) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.schemas[s.ID] = s
}

// Contains reports whether a schema is registered under id.
func (r *MapRegistry) Contains(id schema.MessageIdentifier) bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	_, ok := r.schemas[id]
	return ok
}

// Len returns the number of registered schemas.
func (r *MapRegistry) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.schemas)
}

// Lookup returns the schema registered under id.
func (r *MapRegistry) Lookup(id schema.MessageIdentifier) (*schema.Schema, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	s, ok := r.schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Chain returns a registry that consults each registry in turn, returning
// the first schema found.
func Chain(registries ...Registry) Registry {
	return chain(registries)
}

type chain []Registry

func (c chain) Lookup(id schema.MessageIdentifier) (*schema.Schema, error) {
	for _, r := range c {
		s, err := r.Lookup(id)
		if err == nil {
			return s, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
