package storage

import (
	"context"
	"errors"
)

/*
Storage providers persist opaque objects under slash-separated string
identifiers. They back the schema store, which keeps parsed message
definitions available across invocations.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrObjectNotFound is returned when an object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Provider is the interface implemented by storage backends.
type Provider interface {
	// Put stores an object, replacing any existing object with the same id.
	Put(ctx context.Context, id string, data []byte) error

	// Get returns the object stored under id, or ErrObjectNotFound.
	Get(ctx context.Context, id string) ([]byte, error)

	// List returns the ids of all objects beginning with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, id string) error

	String() string
}
