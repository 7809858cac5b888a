package ros2msg

import "fmt"

/*
Errors returned by the definition parser. Each carries the 1-based line
number of the offending declaration, relative to the text supplied to the
parser.
*/

////////////////////////////////////////////////////////////////////////////////

// InvalidIdentifierError is returned when a field or constant name is not a
// valid identifier.
type InvalidIdentifierError struct {
	Line int
	Name string
}

func (e InvalidIdentifierError) Error() string {
	return fmt.Sprintf("line %d: invalid identifier %q", e.Line, e.Name)
}

// Is returns true if the target error is an InvalidIdentifierError.
func (e InvalidIdentifierError) Is(target error) bool {
	_, ok := target.(InvalidIdentifierError)
	return ok
}

// DuplicateNameError is returned when a field or constant name is declared
// more than once in a message.
type DuplicateNameError struct {
	Line int
	Name string
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("line %d: duplicate name %q", e.Line, e.Name)
}

// Is returns true if the target error is a DuplicateNameError.
func (e DuplicateNameError) Is(target error) bool {
	_, ok := target.(DuplicateNameError)
	return ok
}

// InvalidConstantError is returned when a constant is declared with a
// non-primitive type or a literal that does not parse as its type.
type InvalidConstantError struct {
	Line   int
	Name   string
	Type   string
	Value  string
	Reason string
}

func (e InvalidConstantError) Error() string {
	return fmt.Sprintf("line %d: invalid constant %s %s=%s: %s", e.Line, e.Type, e.Name, e.Value, e.Reason)
}

// Is returns true if the target error is an InvalidConstantError.
func (e InvalidConstantError) Is(target error) bool {
	_, ok := target.(InvalidConstantError)
	return ok
}

// UnknownTypeError is returned when a type name is neither a primitive
// keyword nor a well-formed message reference.
type UnknownTypeError struct {
	Line int
	Type string
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("line %d: unknown type %q", e.Line, e.Type)
}

// Is returns true if the target error is an UnknownTypeError.
func (e UnknownTypeError) Is(target error) bool {
	_, ok := target.(UnknownTypeError)
	return ok
}

// MalformedArraySuffixError is returned when the bound or array suffix of a
// type cannot be parsed.
type MalformedArraySuffixError struct {
	Line   int
	Type   string
	Reason string
}

func (e MalformedArraySuffixError) Error() string {
	return fmt.Sprintf("line %d: malformed type suffix on %q: %s", e.Line, e.Type, e.Reason)
}

// Is returns true if the target error is a MalformedArraySuffixError.
func (e MalformedArraySuffixError) Is(target error) bool {
	_, ok := target.(MalformedArraySuffixError)
	return ok
}

// MissingSeparatorError is returned when service text has no "---" line.
type MissingSeparatorError struct {
	Service string
}

func (e MissingSeparatorError) Error() string {
	return fmt.Sprintf("service %s is missing the --- separator", e.Service)
}

// Is returns true if the target error is a MissingSeparatorError.
func (e MissingSeparatorError) Is(target error) bool {
	_, ok := target.(MissingSeparatorError)
	return ok
}

// SyntaxError is returned for declarations that do not have the shape
// TYPE NAME, TYPE NAME DEFAULT or TYPE NAME=VALUE.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Is returns true if the target error is a SyntaxError.
func (e SyntaxError) Is(target error) bool {
	_, ok := target.(SyntaxError)
	return ok
}
