package schema

import (
	"fmt"
	"regexp"
	"strings"
)

/*
Schema types for ROS2 interface definitions. A Schema is produced by the
ros2msg parser from definition text and is never mutated afterward. Complex
field types carry only the identifier of the referenced message; linking
identifiers to schemas is the job of the resolver package.
*/

////////////////////////////////////////////////////////////////////////////////

// Kind enumerates the closed set of field types.
type Kind int

const (
	BOOL Kind = iota + 1
	BYTE
	CHAR
	INT8
	UINT8
	INT16
	UINT16
	INT32
	UINT32
	INT64
	UINT64
	FLOAT32
	FLOAT64
	STRING
	WSTRING
	ARRAY
	SEQUENCE
	COMPLEX
)

// nolint:gochecknoglobals
var kindNames = map[Kind]string{
	BOOL:     "bool",
	BYTE:     "byte",
	CHAR:     "char",
	INT8:     "int8",
	UINT8:    "uint8",
	INT16:    "int16",
	UINT16:   "uint16",
	INT32:    "int32",
	UINT32:   "uint32",
	INT64:    "int64",
	UINT64:   "uint64",
	FLOAT32:  "float32",
	FLOAT64:  "float64",
	STRING:   "string",
	WSTRING:  "wstring",
	ARRAY:    "array",
	SEQUENCE: "sequence",
	COMPLEX:  "complex",
}

// String returns the grammar keyword for primitive kinds.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindFromKeyword returns the primitive kind named by a grammar keyword.
func KindFromKeyword(keyword string) (Kind, bool) {
	for k := BOOL; k <= WSTRING; k++ {
		if kindNames[k] == keyword {
			return k, true
		}
	}
	return 0, false
}

// Size returns the wire size of a fixed-width primitive, or zero for
// variable-length and composite kinds.
func (k Kind) Size() int {
	switch k {
	case BOOL, BYTE, CHAR, INT8, UINT8:
		return 1
	case INT16, UINT16:
		return 2
	case INT32, UINT32, FLOAT32:
		return 4
	case INT64, UINT64, FLOAT64:
		return 8
	default:
		return 0
	}
}

// MessageIdentifier names a message type within a registry.
type MessageIdentifier struct {
	Package string
	Name    string
}

// NewIdentifier constructs a MessageIdentifier.
func NewIdentifier(pkg, name string) MessageIdentifier {
	return MessageIdentifier{Package: pkg, Name: name}
}

// String returns the identifier in pkg/Name form.
func (id MessageIdentifier) String() string {
	return id.Package + "/" + id.Name
}

var packageNameRegexp = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidPackageName reports whether pkg follows ROS package naming rules:
// lowercase alphanumerics and underscores, starting with a letter, without
// consecutive underscores.
func ValidPackageName(pkg string) bool {
	return packageNameRegexp.MatchString(pkg) && !strings.Contains(pkg, "__")
}

// ParseIdentifier parses "pkg/Name" or the long form "pkg/msg/Name".
func ParseIdentifier(s string) (MessageIdentifier, error) {
	parts := strings.Split(s, "/")
	var pkg, name string
	switch len(parts) {
	case 2:
		pkg, name = parts[0], parts[1]
	case 3:
		if parts[1] != "msg" {
			return MessageIdentifier{}, InvalidIdentifierPathError{s, "expected pkg/msg/Name"}
		}
		pkg, name = parts[0], parts[2]
	default:
		return MessageIdentifier{}, InvalidIdentifierPathError{s, "expected pkg/Name"}
	}
	if !ValidPackageName(pkg) {
		return MessageIdentifier{}, InvalidIdentifierPathError{s, "invalid package name " + pkg}
	}
	if name == "" {
		return MessageIdentifier{}, InvalidIdentifierPathError{s, "empty message name"}
	}
	return MessageIdentifier{Package: pkg, Name: name}, nil
}

// InvalidIdentifierPathError is returned when a message path cannot be
// parsed into a MessageIdentifier.
type InvalidIdentifierPathError struct {
	path   string
	reason string
}

func (e InvalidIdentifierPathError) Error() string {
	return fmt.Sprintf("invalid message path %q: %s", e.path, e.reason)
}

func (e InvalidIdentifierPathError) Is(target error) bool {
	_, ok := target.(InvalidIdentifierPathError)
	return ok
}

// Type is a field type. Kind selects which of the remaining members apply:
// Bound for STRING, WSTRING and SEQUENCE (zero means unbounded), Length and
// Elem for ARRAY, Elem for SEQUENCE, and Ref for COMPLEX.
type Type struct {
	Kind Kind

	Bound  int
	Length int
	Elem   *Type

	Ref MessageIdentifier
}

// Primitive returns a scalar type of the given kind.
func Primitive(k Kind) Type {
	return Type{Kind: k}
}

// String returns a string type with the supplied bound. Zero is unbounded.
func String(bound int) Type {
	return Type{Kind: STRING, Bound: bound}
}

// WString returns a wide string type with the supplied bound.
func WString(bound int) Type {
	return Type{Kind: WSTRING, Bound: bound}
}

// Array returns a fixed-length array of elem.
func Array(elem Type, length int) Type {
	return Type{Kind: ARRAY, Length: length, Elem: &elem}
}

// Sequence returns a variable-length sequence of elem. Zero bound is
// unbounded.
func Sequence(elem Type, bound int) Type {
	return Type{Kind: SEQUENCE, Bound: bound, Elem: &elem}
}

// Complex returns a reference to another message type.
func Complex(id MessageIdentifier) Type {
	return Type{Kind: COMPLEX, Ref: id}
}

// IsPrimitive returns true for scalar kinds, including strings.
func (t Type) IsPrimitive() bool {
	return t.Kind >= BOOL && t.Kind <= WSTRING
}

// IsComplex returns true for message references.
func (t Type) IsComplex() bool {
	return t.Kind == COMPLEX
}

// IsCollection returns true for arrays and sequences.
func (t Type) IsCollection() bool {
	return t.Kind == ARRAY || t.Kind == SEQUENCE
}

// Base returns the innermost element type.
func (t Type) Base() Type {
	for t.IsCollection() && t.Elem != nil {
		t = *t.Elem
	}
	return t
}

// Format renders the type in the definition grammar. Complex types are
// written fully qualified, so the output re-parses identically in any
// package.
func (t Type) Format() string {
	switch t.Kind {
	case STRING, WSTRING:
		if t.Bound > 0 {
			return fmt.Sprintf("%s<=%d", t.Kind, t.Bound)
		}
		return t.Kind.String()
	case ARRAY:
		return fmt.Sprintf("%s[%d]", t.Elem.Format(), t.Length)
	case SEQUENCE:
		if t.Bound > 0 {
			return fmt.Sprintf("%s[<=%d]", t.Elem.Format(), t.Bound)
		}
		return t.Elem.Format() + "[]"
	case COMPLEX:
		return t.Ref.String()
	default:
		return t.Kind.String()
	}
}

// Field is a named, typed member of a message. Wire layout follows field
// declaration order. Default holds the raw default-value literal, if any.
type Field struct {
	Name    string
	Type    Type
	Default string
}

// Constant is a named literal attached to a message. Constants never appear
// on the wire. Value holds the typed literal: bool, int64, uint64, float64 or
// string depending on Type.
type Constant struct {
	Name  string
	Type  Type
	Value any
	Raw   string
}

// Schema is a parsed message definition. Text holds the definition exactly
// as supplied.
type Schema struct {
	ID        MessageIdentifier
	Fields    []Field
	Constants []Constant
	Text      string
}

// Constant returns the named constant.
func (s *Schema) Constant(name string) (Constant, bool) {
	for _, c := range s.Constants {
		if c.Name == name {
			return c, true
		}
	}
	return Constant{}, false
}

// Field returns the named field.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Dependencies returns the message types this schema references directly,
// in field order. Duplicates are preserved.
func (s *Schema) Dependencies() []MessageIdentifier {
	deps := []MessageIdentifier{}
	for _, f := range s.Fields {
		if base := f.Type.Base(); base.IsComplex() {
			deps = append(deps, base.Ref)
		}
	}
	return deps
}

// String re-serializes the schema in the definition grammar: constants
// first, then fields with their default values, one declaration per line.
// Comments are not reproduced.
func (s *Schema) String() string {
	sb := &strings.Builder{}
	for _, c := range s.Constants {
		sb.WriteString(c.Type.Format())
		sb.WriteString(" ")
		sb.WriteString(c.Name)
		sb.WriteString("=")
		sb.WriteString(c.Raw)
		sb.WriteString("\n")
	}
	for _, f := range s.Fields {
		sb.WriteString(f.Type.Format())
		sb.WriteString(" ")
		sb.WriteString(f.Name)
		if f.Default != "" {
			sb.WriteString(" ")
			sb.WriteString(f.Default)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Service is a parsed service definition.
type Service struct {
	ID       MessageIdentifier
	Request  *Schema
	Response *Schema
	Text     string
}

// RequestID returns the identifier of the request message for a service.
func RequestID(service MessageIdentifier) MessageIdentifier {
	return MessageIdentifier{Package: service.Package, Name: service.Name + "_Request"}
}

// ResponseID returns the identifier of the response message for a service.
func ResponseID(service MessageIdentifier) MessageIdentifier {
	return MessageIdentifier{Package: service.Package, Name: service.Name + "_Response"}
}
