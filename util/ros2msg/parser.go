package ros2msg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/wkalt/ros2dyn/util/schema"
)

/*
This file contains Parse, which accepts a []byte-valued ROS2 message
definition with package and name, and returns a *schema.Schema.

Definitions are line oriented. Each non-blank, non-comment line is tokenized
and handed to a small recursive descent parser that recognizes

	TYPE NAME
	TYPE NAME DEFAULT
	TYPE NAME=VALUE

where TYPE is [pkg/]base[<=N][suffix] and suffix is one of [], [N] or [<=N].
The resulting schema is unresolved: complex field types carry only the
identifier of the referenced message.
*/

////////////////////////////////////////////////////////////////////////////////

var identifierRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Parse parses a ROS2 .msg definition. pkg is the owning package, used for
// unqualified message references.
func Parse(pkg string, name string, msgdef []byte) (*schema.Schema, error) {
	return parseMessage(schema.NewIdentifier(pkg, name), string(msgdef), 0)
}

func parseMessage(id schema.MessageIdentifier, text string, lineOffset int) (*schema.Schema, error) {
	s := &schema.Schema{
		ID:   id,
		Text: text,
	}
	seen := make(map[string]bool)
	for i, line := range strings.Split(text, "\n") {
		lineno := lineOffset + i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		decl, err := parseDeclaration(line, lineno, id.Package)
		if err != nil {
			return nil, err
		}
		if seen[decl.name] {
			return nil, DuplicateNameError{Line: lineno, Name: decl.name}
		}
		seen[decl.name] = true
		if decl.constant {
			constant, err := newConstant(decl, lineno)
			if err != nil {
				return nil, err
			}
			s.Constants = append(s.Constants, constant)
			continue
		}
		s.Fields = append(s.Fields, schema.Field{
			Name:    decl.name,
			Type:    decl.typ,
			Default: decl.value,
		})
	}
	return s, nil
}

type declaration struct {
	typ      schema.Type
	typeText string
	name     string
	constant bool
	value    string
	quoted   bool
}

type lineParser struct {
	line   string
	lineno int
	tokens []lexer.Token
	pos    int
}

func parseDeclaration(line string, lineno int, pkg string) (*declaration, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return nil, SyntaxError{Line: lineno, Msg: err.Error()}
	}
	p := &lineParser{line: line, lineno: lineno, tokens: tokens}
	return p.parse(pkg)
}

func (p *lineParser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *lineParser) next() lexer.Token {
	tok := p.tokens[p.pos]
	if !tok.EOF() {
		p.pos++
	}
	return tok
}

// skipSpace consumes whitespace and reports whether any was present.
func (p *lineParser) skipSpace() bool {
	skipped := false
	for p.peek().Type == tokWhitespace {
		p.next()
		skipped = true
	}
	return skipped
}

// atEnd reports whether only a comment, if anything, remains on the line.
func (p *lineParser) atEnd() bool {
	tok := p.peek()
	return tok.EOF() || tok.Type == tokComment
}

// commentOffset returns the offset of the trailing comment, or the line
// length if there is none. Comment tokens never start inside a quoted
// literal.
func (p *lineParser) commentOffset() int {
	for _, tok := range p.tokens[p.pos:] {
		if tok.Type == tokComment {
			return tok.Pos.Offset
		}
	}
	return len(p.line)
}

func (p *lineParser) parse(pkg string) (*declaration, error) {
	p.skipSpace()
	typ, typeText, err := p.parseType(pkg)
	if err != nil {
		return nil, err
	}
	decl := &declaration{typ: typ, typeText: typeText}

	if !p.skipSpace() || p.atEnd() {
		return nil, SyntaxError{Line: p.lineno, Msg: fmt.Sprintf("missing name after type %s", typeText)}
	}
	nameTok := p.next()
	if nameTok.Type != tokWord {
		return nil, InvalidIdentifierError{Line: p.lineno, Name: nameTok.Value}
	}
	decl.name = nameTok.Value
	if !identifierRegexp.MatchString(decl.name) {
		return nil, InvalidIdentifierError{Line: p.lineno, Name: decl.name}
	}

	spaced := p.skipSpace()
	tok := p.peek()
	switch {
	case tok.Type == tokEquals:
		p.next()
		decl.constant = true
		return decl, p.parseConstantValue(decl, tok.Pos.Offset+1)
	case p.atEnd():
		return decl, nil
	case spaced:
		decl.value = strings.TrimSpace(p.line[tok.Pos.Offset:p.commentOffset()])
		return decl, nil
	default:
		return nil, InvalidIdentifierError{Line: p.lineno, Name: decl.name + tok.Value}
	}
}

// parseConstantValue extracts the literal following "=". String constants
// that are not quoted take the remainder of the line verbatim, including any
// '#' characters.
func (p *lineParser) parseConstantValue(decl *declaration, start int) error {
	isString := decl.typ.Kind == schema.STRING || decl.typ.Kind == schema.WSTRING
	p.skipSpace()
	tok := p.peek()
	switch {
	case isString && tok.Type == tokString:
		p.next()
		p.skipSpace()
		if !p.atEnd() {
			return InvalidConstantError{
				Line:   p.lineno,
				Name:   decl.name,
				Type:   decl.typeText,
				Value:  strings.TrimSpace(p.line[start:]),
				Reason: "unexpected text after quoted string",
			}
		}
		decl.value = tok.Value
		decl.quoted = true
	case isString:
		decl.value = strings.TrimSpace(p.line[start:])
	default:
		decl.value = strings.TrimSpace(p.line[start:p.commentOffset()])
	}
	return nil
}

func (p *lineParser) malformed(typeText string, format string, args ...any) error {
	return MalformedArraySuffixError{
		Line:   p.lineno,
		Type:   typeText,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (p *lineParser) parseType(pkg string) (schema.Type, string, error) {
	start := p.peek()
	if start.Type != tokWord {
		return schema.Type{}, "", SyntaxError{Line: p.lineno, Msg: fmt.Sprintf("expected type, found %q", start.Value)}
	}
	p.next()
	parts := []string{start.Value}
	for p.peek().Type == tokSlash {
		p.next()
		word := p.peek()
		if word.Type != tokWord {
			return schema.Type{}, "", UnknownTypeError{Line: p.lineno, Type: strings.Join(parts, "/") + "/"}
		}
		p.next()
		parts = append(parts, word.Value)
	}
	typeName := strings.Join(parts, "/")
	base, err := p.resolveBase(pkg, parts, typeName)
	if err != nil {
		return schema.Type{}, "", err
	}

	if p.peek().Type == tokLEQ {
		p.next()
		if base.Kind != schema.STRING && base.Kind != schema.WSTRING {
			return schema.Type{}, "", p.malformed(typeName, "size bound on non-string type")
		}
		bound, err := p.expectCount(typeName)
		if err != nil {
			return schema.Type{}, "", err
		}
		base.Bound = bound
	}

	typ := base
	if p.peek().Type == tokLBracket {
		p.next()
		switch tok := p.peek(); tok.Type {
		case tokRBracket:
			p.next()
			typ = schema.Sequence(base, 0)
		case tokLEQ:
			p.next()
			bound, err := p.expectCount(typeName)
			if err != nil {
				return schema.Type{}, "", err
			}
			if err := p.expectClose(typeName); err != nil {
				return schema.Type{}, "", err
			}
			typ = schema.Sequence(base, bound)
		case tokWord:
			length, err := p.expectCount(typeName)
			if err != nil {
				return schema.Type{}, "", err
			}
			if err := p.expectClose(typeName); err != nil {
				return schema.Type{}, "", err
			}
			typ = schema.Array(base, length)
		default:
			return schema.Type{}, "", p.malformed(typeName, "unexpected %q in array suffix", tok.Value)
		}
	}

	end := p.peek()
	if end.Type != tokWhitespace && !p.atEnd() {
		return schema.Type{}, "", p.malformed(typeName, "unexpected %q after type", end.Value)
	}
	return typ, p.line[start.Pos.Offset:end.Pos.Offset], nil
}

func (p *lineParser) expectCount(typeName string) (int, error) {
	tok := p.peek()
	if tok.Type != tokWord {
		return 0, p.malformed(typeName, "expected a size, found %q", tok.Value)
	}
	p.next()
	n, err := strconv.ParseUint(tok.Value, 10, 31)
	if err != nil || n == 0 {
		return 0, p.malformed(typeName, "invalid size %q", tok.Value)
	}
	return int(n), nil
}

func (p *lineParser) expectClose(typeName string) error {
	tok := p.peek()
	if tok.Type != tokRBracket {
		return p.malformed(typeName, "expected ], found %q", tok.Value)
	}
	p.next()
	return nil
}

// resolveBase maps the slash-separated type name to a primitive or complex
// type. Unqualified message names belong to the owning package, except
// Header, which is always std_msgs/Header.
func (p *lineParser) resolveBase(pkg string, parts []string, typeName string) (schema.Type, error) {
	switch len(parts) {
	case 1:
		if kind, ok := schema.KindFromKeyword(parts[0]); ok {
			return schema.Primitive(kind), nil
		}
		if parts[0] == "Header" {
			return schema.Complex(schema.NewIdentifier("std_msgs", "Header")), nil
		}
		if isMessageName(parts[0]) {
			return schema.Complex(schema.NewIdentifier(pkg, parts[0])), nil
		}
	case 2, 3:
		if len(parts) == 3 && parts[1] != "msg" {
			break
		}
		name := parts[len(parts)-1]
		if schema.ValidPackageName(parts[0]) && isMessageName(name) {
			return schema.Complex(schema.NewIdentifier(parts[0], name)), nil
		}
	}
	return schema.Type{}, UnknownTypeError{Line: p.lineno, Type: typeName}
}

// isMessageName reports whether s is a valid message type name: an
// identifier beginning with an uppercase letter.
func isMessageName(s string) bool {
	if s == "" || !unicode.IsUpper(rune(s[0])) {
		return false
	}
	return identifierRegexp.MatchString(s)
}

func newConstant(decl *declaration, lineno int) (schema.Constant, error) {
	invalid := func(reason string) error {
		return InvalidConstantError{
			Line:   lineno,
			Name:   decl.name,
			Type:   decl.typeText,
			Value:  decl.value,
			Reason: reason,
		}
	}
	if !decl.typ.IsPrimitive() {
		return schema.Constant{}, invalid("constants must have a primitive type")
	}
	if decl.value == "" {
		return schema.Constant{}, invalid("missing value")
	}
	value, err := parseLiteral(decl.typ, decl.value, decl.quoted)
	if err != nil {
		return schema.Constant{}, invalid(err.Error())
	}
	return schema.Constant{
		Name:  decl.name,
		Type:  decl.typ,
		Value: value,
		Raw:   decl.value,
	}, nil
}

// parseLiteral parses a constant literal according to its type. Integers
// are returned as int64 or uint64, floats as float64.
func parseLiteral(t schema.Type, raw string, quoted bool) (any, error) {
	switch t.Kind {
	case schema.BOOL:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("not a boolean")
		}
		return b, nil
	case schema.INT8, schema.INT16, schema.INT32, schema.INT64:
		n, err := strconv.ParseInt(raw, 0, t.Kind.Size()*8)
		if err != nil {
			return nil, fmt.Errorf("not a valid %s", t.Kind)
		}
		return n, nil
	case schema.BYTE, schema.CHAR, schema.UINT8, schema.UINT16, schema.UINT32, schema.UINT64:
		n, err := strconv.ParseUint(raw, 0, t.Kind.Size()*8)
		if err != nil {
			return nil, fmt.Errorf("not a valid %s", t.Kind)
		}
		return n, nil
	case schema.FLOAT32, schema.FLOAT64:
		f, err := strconv.ParseFloat(raw, t.Kind.Size()*8)
		if err != nil {
			return nil, fmt.Errorf("not a valid %s", t.Kind)
		}
		return f, nil
	case schema.STRING, schema.WSTRING:
		s := raw
		if quoted {
			s = unquote(raw)
		}
		if t.Bound > 0 && len([]rune(s)) > t.Bound {
			return nil, fmt.Errorf("length %d exceeds bound %d", len([]rune(s)), t.Bound)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported constant type %s", t.Kind)
	}
}

// unquote strips matching single or double quotes and resolves backslash
// escapes of quotes and backslashes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	s = s[1 : len(s)-1]
	if !strings.Contains(s, `\`) {
		return s
	}
	sb := &strings.Builder{}
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\', '"', '\'':
				i++
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
