package annotations

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/infrabuilder/internal/errors"
)

// SourceLocation is where an annotation or token appears in source
type SourceLocation = errors.SourceLocation

// DiagnosticKind distinguishes the ways a route annotation can be malformed
type DiagnosticKind int

const (
	MalformedAttribute DiagnosticKind = iota
	MissingArguments
	MissingPath
	TooManyArguments
	InvalidMethod
	InvalidMethodArgument
	InvalidPathArgument
	MissingEntryPoint
	MissingAnnotation
	DuplicateAnnotation
	MisplacedAnnotation
)

// String returns a short identifier for the kind
func (k DiagnosticKind) String() string {
	switch k {
	case MalformedAttribute:
		return "malformed-attribute"
	case MissingArguments:
		return "missing-arguments"
	case MissingPath:
		return "missing-path"
	case TooManyArguments:
		return "too-many-arguments"
	case InvalidMethod:
		return "invalid-method"
	case InvalidMethodArgument:
		return "invalid-method-argument"
	case InvalidPathArgument:
		return "invalid-path-argument"
	case MissingEntryPoint:
		return "missing-entry-point"
	case MissingAnnotation:
		return "missing-annotation"
	case DuplicateAnnotation:
		return "duplicate-annotation"
	case MisplacedAnnotation:
		return "misplaced-annotation"
	default:
		return "unknown"
	}
}

// Diagnostic is a recoverable, source-positioned report about a route annotation
type Diagnostic struct {
	*errors.BaseError
	Kind     DiagnosticKind
	Expected string // what the processor was looking for
	Found    string // what it saw instead
	Example  string // corrected usage, when one applies
}

// Suggestion returns the corrective example, if any
func (d *Diagnostic) Suggestion() string {
	return d.Example
}

func newDiagnostic(kind DiagnosticKind, loc SourceLocation, msg string) *Diagnostic {
	code := errors.ValidationErrorCode
	if kind == MalformedAttribute {
		code = errors.SyntaxErrorCode
	}
	base := errors.New(code, msg).
		WithLocation(loc).
		WithContext("diagnostic", kind.String())
	return &Diagnostic{BaseError: base, Kind: kind}
}

func (d *Diagnostic) expect(expected, found string) *Diagnostic {
	d.Expected = expected
	d.Found = found
	return d
}

func (d *Diagnostic) example(example string) *Diagnostic {
	d.Example = example
	d.BaseError.WithSuggestion(example)
	return d
}

// tokenLocation maps a parser position inside an attribute onto the file
func tokenLocation(base SourceLocation, pos lexer.Position) SourceLocation {
	if pos.Line == 0 {
		return base
	}
	return SourceLocation{Line: pos.Line, Column: pos.Column}.Offset(base)
}

func syntaxDiagnostic(base SourceLocation, err error) *Diagnostic {
	loc := base
	msg := err.Error()
	if perr, ok := err.(participle.Error); ok {
		loc = tokenLocation(base, perr.Position())
		msg = perr.Message()
	}
	return newDiagnostic(MalformedAttribute, loc, fmt.Sprintf("malformed route attribute: %s", msg)).
		expect("#[route(METHOD, \"/path\")]", msg).
		example(RenderAttribute(MethodGet, "/some/path"))
}
