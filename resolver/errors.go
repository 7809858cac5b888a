package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wkalt/ros2dyn/util/schema"
)

/*
Errors that can be returned by the resolver package.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrNotFound is wrapped by registries when a requested schema is absent.
var ErrNotFound = errors.New("schema not found")

// UnresolvedTypeError is returned when a referenced message type is absent
// from the registry. Resolution stops at the first such reference.
type UnresolvedTypeError struct {
	ID       schema.MessageIdentifier
	Referrer schema.MessageIdentifier
}

// Error returns a string representation of the error.
func (e UnresolvedTypeError) Error() string {
	return fmt.Sprintf("unresolved type %s referenced by %s", e.ID, e.Referrer)
}

// Is returns true if the target error is an UnresolvedTypeError.
func (e UnresolvedTypeError) Is(target error) bool {
	_, ok := target.(UnresolvedTypeError)
	return ok
}

// CyclicDependencyError is returned when a message type references itself,
// directly or through other types.
type CyclicDependencyError struct {
	Path []schema.MessageIdentifier
}

// Error returns a string representation of the error.
func (e CyclicDependencyError) Error() string {
	names := make([]string, len(e.Path))
	for i, id := range e.Path {
		names[i] = id.String()
	}
	return "cyclic dependency: " + strings.Join(names, " -> ")
}

// Is returns true if the target error is a CyclicDependencyError.
func (e CyclicDependencyError) Is(target error) bool {
	_, ok := target.(CyclicDependencyError)
	return ok
}
