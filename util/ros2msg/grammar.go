package ros2msg

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

/*
Lexer and grammar fragments for the ROS2 interface definition format:
https://docs.ros.org/en/iron/Concepts/Basic/About-Interfaces.html

Declarations are tokenized one line at a time with Lexer and consumed by the
recursive descent parser in parser.go. Whitespace is significant in the
declaration grammar (it separates type, name and value, and must not appear
inside a type), so it is not elided there. The "MSG:" section headers of
concatenated definitions are simple enough for a participle grammar.
*/

// nolint:gochecknoglobals
var (
	Lexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "String", Pattern: `"(\\.|[^"\\])*"|'(\\.|[^'\\])*'`},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "LEQ", Pattern: `<=`},
		{Name: "Equals", Pattern: `=`},
		{Name: "LBracket", Pattern: `\[`},
		{Name: "RBracket", Pattern: `\]`},
		{Name: "Slash", Pattern: `/`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Comma", Pattern: `,`},
		{Name: "Word", Pattern: `[a-zA-Z0-9_.+\-]+`},
		{Name: "Other", Pattern: `.`},
	})

	HeaderParser = participle.MustBuild[Header](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace", "Comment"),
	)

	symbols = Lexer.Symbols()

	tokComment    = symbols["Comment"]
	tokString     = symbols["String"]
	tokWhitespace = symbols["Whitespace"]
	tokLEQ        = symbols["LEQ"]
	tokEquals     = symbols["Equals"]
	tokLBracket   = symbols["LBracket"]
	tokRBracket   = symbols["RBracket"]
	tokSlash      = symbols["Slash"]
	tokWord       = symbols["Word"]
)

// Header is the "MSG: pkg/Name" line introducing a dependency section in a
// concatenated message definition.
type Header struct {
	Type string `parser:"'MSG' Colon @(Word ( Slash Word )*)"`
}

// tokenize lexes a single line. The trailing EOF token is retained.
func tokenize(line string) ([]lexer.Token, error) {
	lex, err := Lexer.LexString("", line)
	if err != nil {
		return nil, err
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
