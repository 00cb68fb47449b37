package theme

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	themeLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[-.:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(themeLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// File is the root AST node of a theme file.
type File struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'theme' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is either a key/value settings block or a table definition.
type Section struct {
	Settings *Settings `parser:"  @@"`
	Table    *Table    `parser:"| @@"`
}

// Settings holds `meta`, `captions`, `fonts` or `metrics` entries.
type Settings struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Kind    string         `parser:"@('meta' | 'captions' | 'fonts' | 'metrics')"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Entry uses colon syntax (key: value...). Several values are allowed, e.g. margins.
type Entry struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Key    string         `parser:"@Ident ':'"`
	Values []*Value       `parser:"@@+"`
}

// Table describes the columns and style rules of one table.
type Table struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"'table' @Ident"`
	Items []*TableItem   `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// TableItem is a column or a style rule.
type TableItem struct {
	Column *Column `parser:"  @@"`
	Style  *Style  `parser:"| @@"`
}

// Column: column <key> ["header"] [width|min|max|align <value>]...
type Column struct {
	Pos     lexer.Position  `parser:"" json:"-"`
	Key     string          `parser:"'column' @Ident"`
	Header  StringLiteral   `parser:"@String?"`
	Options []*ColumnOption `parser:"@@*"`
}

// ColumnOption is a single keyword/value pair on a column line.
type ColumnOption struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@('width' | 'min' | 'max' | 'align')"`
	Value *Value         `parser:"@@"`
}

// Style: style [rows <span>] [cols <span>] { entries }
type Style struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Rows    *Span          `parser:"'style' ( 'rows' @@ )?"`
	Cols    *Span          `parser:"( 'cols' @@ )?"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Span is `a` or `a..b`; negative indices count from the end.
type Span struct {
	From *Index `parser:"@@"`
	To   *Index `parser:"( '.' '.' @@ )?"`
}

// Index is an optionally negative integer.
type Index struct {
	Neg   bool   `parser:"@'-'?"`
	Value string `parser:"@Number"`
}

// Value is a single scalar value.
type Value struct {
	Pos    lexer.Position `parser:"" json:"-"`
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// ParseFile parses theme source from r; name is used in error positions.
func ParseFile(name string, r io.Reader) (*File, error) {
	return fileParser.Parse(name, r)
}

// ParseFileString parses theme source from a string.
func ParseFileString(name, input string) (*File, error) {
	return fileParser.ParseString(name, input)
}

func (i *Index) int() (int, error) {
	n, err := strconv.Atoi(i.Value)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", i.Value)
	}
	if i.Neg {
		n = -n
	}
	return n, nil
}

// raw returns the value as written, without quotes for strings.
func (v *Value) raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}
