package annotations

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// attributeAST is the token-level shape of an outer attribute:
//
//	#[path::to::name(arg, arg, ...)]
type attributeAST struct {
	Pos    lexer.Position
	Path   []string  `parser:"'#' '[' @Ident ( '::' @Ident )*"`
	Call   *callAST  `parser:"@@? ']'"`
	EndPos lexer.Position
}

type callAST struct {
	Pos  lexer.Position
	Args []*argAST `parser:"'(' ( @@ ( ',' @@ )* ','? )? ')'"`
}

type argAST struct {
	Pos   lexer.Position
	Parts []*argPartAST `parser:"@@+"`
}

type argPartAST struct {
	Raw    *string `parser:"  @RawString"`
	String *string `parser:"| @String"`
	Number *string `parser:"| @Number"`
	Ident  *string `parser:"| @Ident"`
	Other  *string `parser:"| @( Other | '::' | '#' | '=' | '[' | ']' )"`
}

var attributeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "RawString", Pattern: `r#*"[^"]*"#*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Number", Pattern: `[0-9][0-9_]*(\.[0-9_]+)?([a-z][a-z0-9]*)?`},
	{Name: "PathSep", Pattern: `::`},
	{Name: "Punct", Pattern: `[#\[\](),=]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `[^\s]`},
})

var attributeParser = participle.MustBuild[attributeAST](
	participle.Lexer(attributeLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ArgKind classifies a single attribute argument
type ArgKind int

const (
	ArgIdent ArgKind = iota
	ArgString
	ArgNumber
	ArgExpression
)

// String describes the kind the way diagnostics present it
func (k ArgKind) String() string {
	switch k {
	case ArgIdent:
		return "identifier"
	case ArgString:
		return "string literal"
	case ArgNumber:
		return "numeric literal"
	default:
		return "expression"
	}
}

// Arg is one classified argument of an attribute
type Arg struct {
	Kind  ArgKind
	Text  string // source text of the argument
	Value string // unquoted value for string literals
	Pos   lexer.Position
}

// attribute is the parsed, classified form of an outer attribute
type attribute struct {
	Path   []string
	Args   []Arg
	HasArg bool // parenthesised argument list present
	EndPos lexer.Position
}

// Name returns the final path segment, e.g. "route" for infra_builder::route
func (a *attribute) Name() string {
	if len(a.Path) == 0 {
		return ""
	}
	return a.Path[len(a.Path)-1]
}

func parseAttribute(filename, text string) (*attribute, error) {
	ast, err := attributeParser.ParseString(filename, text)
	if err != nil {
		return nil, err
	}

	attr := &attribute{Path: ast.Path, EndPos: ast.EndPos}
	if ast.Call != nil {
		attr.HasArg = true
		for _, a := range ast.Call.Args {
			attr.Args = append(attr.Args, classifyArg(a))
		}
	}
	return attr, nil
}

func classifyArg(a *argAST) Arg {
	texts := make([]string, 0, len(a.Parts))
	for _, p := range a.Parts {
		texts = append(texts, p.text())
	}
	arg := Arg{Kind: ArgExpression, Text: strings.Join(texts, " "), Pos: a.Pos}
	if len(a.Parts) != 1 {
		return arg
	}

	part := a.Parts[0]
	switch {
	case part.Ident != nil:
		arg.Kind = ArgIdent
	case part.String != nil:
		arg.Kind = ArgString
		arg.Value = unquote(*part.String)
	case part.Raw != nil:
		arg.Kind = ArgString
		arg.Value = unquoteRaw(*part.Raw)
	case part.Number != nil:
		arg.Kind = ArgNumber
	}
	return arg
}

func (p *argPartAST) text() string {
	switch {
	case p.Raw != nil:
		return *p.Raw
	case p.String != nil:
		return *p.String
	case p.Number != nil:
		return *p.Number
	case p.Ident != nil:
		return *p.Ident
	case p.Other != nil:
		return *p.Other
	}
	return ""
}

func unquote(lit string) string {
	if s, err := strconv.Unquote(lit); err == nil {
		return s
	}
	return strings.TrimSuffix(strings.TrimPrefix(lit, `"`), `"`)
}

func unquoteRaw(lit string) string {
	lit = strings.TrimPrefix(lit, "r")
	lit = strings.Trim(lit, "#")
	return strings.TrimSuffix(strings.TrimPrefix(lit, `"`), `"`)
}
