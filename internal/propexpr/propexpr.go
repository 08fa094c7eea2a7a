// Package propexpr parses the property literals accepted on the command
// line: coordinates "(x, y)", numbers, quoted strings and true/false.
// Parsed values have the Go types entity.Properties expects.
package propexpr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

// ErrAssignment is returned for arguments not of the form key=value
var ErrAssignment = errors.New("propexpr: expected key=value")

var propLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[(),]`},
})

// Value is one property literal
type Value struct {
	Coord  *Coord   `  @@`
	Number *float64 `| @Number`
	String *string  `| @String`
	Bool   *Boolean `| @("true" | "false")`
}

// Coord is a "(x, y)" literal
type Coord struct {
	X float64 `"(" @Number ","`
	Y float64 `@Number ")"`
}

// Boolean captures true/false by text
type Boolean bool

func (b *Boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

// Parser parses property literals
type Parser struct {
	parser *participle.Parser[Value]
}

// NewParser builds the literal grammar
func NewParser() (*Parser, error) {
	parser, err := participle.Build[Value](
		participle.Lexer(propLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse returns the Go value of one literal: geo.Coordinate, float64,
// string or bool
func (p *Parser) Parse(input string) (any, error) {
	v, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if out := v.Go(); out != nil {
		return out, nil
	}
	return nil, fmt.Errorf("parse error: empty literal %q", input)
}

// ParseAssignment splits "key=literal" and parses the literal
func (p *Parser) ParseAssignment(arg string) (string, any, error) {
	key, literal, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("%q: %w", arg, ErrAssignment)
	}
	v, err := p.Parse(literal)
	if err != nil {
		return "", nil, fmt.Errorf("property %q: %w", key, err)
	}
	return key, v, nil
}

// ParseProperties parses a list of key=literal arguments
func (p *Parser) ParseProperties(args []string) (entity.Properties, error) {
	props := make(entity.Properties, len(args))
	for _, arg := range args {
		key, v, err := p.ParseAssignment(arg)
		if err != nil {
			return nil, err
		}
		props[key] = v
	}
	return props, nil
}

// Go converts the parsed literal to its property value
func (v *Value) Go() any {
	switch {
	case v.Coord != nil:
		return geo.Coord(v.Coord.X, v.Coord.Y)
	case v.Number != nil:
		return *v.Number
	case v.String != nil:
		return *v.String
	case v.Bool != nil:
		return bool(*v.Bool)
	}
	return nil
}

// Format renders a property value as a literal Parse accepts
func Format(v any) string {
	switch t := v.(type) {
	case geo.Coordinate:
		return fmt.Sprintf("(%s, %s)", formatFloat(t.X), formatFloat(t.Y))
	case float64:
		return formatFloat(t)
	case string:
		return strconv.Quote(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
