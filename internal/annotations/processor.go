// Package annotations extracts route descriptors from #[route(METHOD, "PATH")]
// attributes attached to a program's entry point.
package annotations

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/toyz/infrabuilder/internal/entrypoint"
)

// RouteAttributeName is the attribute name the processor reacts to.
const RouteAttributeName = "route"

// RouteDescriptor is the (method, path, handler) triple carried by an annotation
type RouteDescriptor struct {
	Method      HTTPMethod     `json:"method"`
	Path        string         `json:"path"`
	HandlerName string         `json:"handler"`
	Location    SourceLocation `json:"-"`
}

// RenderAttribute renders a route attribute in its canonical form
func RenderAttribute(method HTTPMethod, path string) string {
	return fmt.Sprintf("#[%s(%s, %s)]", RouteAttributeName, method, strconv.Quote(path))
}

var attributeName = regexp.MustCompile(`^#\s*\[\s*((?:[A-Za-z_][A-Za-z0-9_]*\s*::\s*)*[A-Za-z_][A-Za-z0-9_]*)`)

// IsRouteAttribute reports whether attribute text names the route attribute,
// optionally path-qualified as in #[infra_builder::route(...)].
func IsRouteAttribute(text string) bool {
	m := attributeName.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return false
	}
	segments := strings.Split(m[1], "::")
	return strings.TrimSpace(segments[len(segments)-1]) == RouteAttributeName
}

// Processor turns route attributes into RouteDescriptors or Diagnostics
type Processor struct{}

// NewProcessor creates a new annotation processor
func NewProcessor() *Processor {
	return &Processor{}
}

// Process validates one route attribute attached to the function named handler.
// Failures are returned as *Diagnostic.
func (p *Processor) Process(attr entrypoint.Attribute, handler string) (*RouteDescriptor, error) {
	loc := attr.Location
	parsed, err := parseAttribute(loc.File, strings.TrimSpace(attr.Text))
	if err != nil {
		return nil, syntaxDiagnostic(loc, err)
	}

	args := parsed.Args
	endLoc := tokenLocation(loc, parsed.EndPos)

	// arity
	switch {
	case len(args) == 0:
		return nil, newDiagnostic(MissingArguments, endLoc,
			"missing arguments: route requires exactly 2 (HTTP method, URL path), e.g. `"+RenderAttribute(MethodGet, "/some/path")+"`").
			expect("an HTTP method and a route path", "no arguments").
			example(RenderAttribute(MethodGet, "/some/path"))
	case len(args) == 1:
		method := "METHOD"
		if args[0].Kind == ArgIdent {
			if m, err := ParseMethod(args[0].Text); err == nil {
				method = m.String()
			}
		}
		example := fmt.Sprintf("#[%s(%s, \"/some/path\")]", RouteAttributeName, method)
		return nil, newDiagnostic(MissingPath, endLoc,
			"missing second argument: expected a route path string literal, e.g. `"+example+"`").
			expect("a route path string literal", "1 argument").
			example(example)
	case len(args) > 2:
		return nil, newDiagnostic(TooManyArguments, tokenLocation(loc, args[2].Pos),
			"too many arguments: route requires exactly 2 (HTTP method, URL path)").
			expect("2 arguments", fmt.Sprintf("%d arguments", len(args))).
			example(RenderAttribute(MethodGet, "/some/path"))
	}

	// method
	methodArg := args[0]
	if methodArg.Kind != ArgIdent {
		return nil, newDiagnostic(InvalidMethodArgument, tokenLocation(loc, methodArg.Pos),
			fmt.Sprintf("expected HTTP method identifier as the first argument, found %s `%s`", methodArg.Kind, methodArg.Text)).
			expect("one of "+RenderMethods(), methodArg.Kind.String()).
			example(RenderAttribute(MethodGet, "/some/path"))
	}
	method, err := ParseMethod(methodArg.Text)
	if err != nil {
		return nil, newDiagnostic(InvalidMethod, tokenLocation(loc, methodArg.Pos), err.Error()).
			expect(RenderMethods(), methodArg.Text).
			example(RenderAttribute(MethodGet, "/some/path"))
	}

	// path
	pathArg := args[1]
	if pathArg.Kind != ArgString {
		return nil, newDiagnostic(InvalidPathArgument, tokenLocation(loc, pathArg.Pos),
			"expected route path string as the second argument").
			expect("a string literal", fmt.Sprintf("%s `%s`", pathArg.Kind, pathArg.Text)).
			example(RenderAttribute(method, "/some/path"))
	}

	return &RouteDescriptor{
		Method:      method,
		Path:        pathArg.Value,
		HandlerName: handler,
		Location:    loc,
	}, nil
}

// ExtractEntryPoint applies Process to the route attribute of a file's entry
// point. Every problem found is returned as a Diagnostic; the descriptor is nil
// unless exactly one valid route attribute sits above the entry function.
func (p *Processor) ExtractEntryPoint(file *entrypoint.File) (*RouteDescriptor, []*Diagnostic) {
	var diags []*Diagnostic
	fileLoc := SourceLocation{File: file.Path}

	for _, fn := range file.Functions {
		if fn.Name == entrypoint.EntryFunction {
			continue
		}
		for _, attr := range fn.Attributes {
			if IsRouteAttribute(attr.Text) {
				diags = append(diags, newDiagnostic(MisplacedAnnotation, attr.Location,
					fmt.Sprintf("route attribute must be attached to the entry-point function '%s', found on '%s'",
						entrypoint.EntryFunction, fn.Name)).
					expect("fn "+entrypoint.EntryFunction, "fn "+fn.Name))
			}
		}
	}

	main, ok := file.Entry()
	if !ok {
		diags = append(diags, newDiagnostic(MissingEntryPoint, fileLoc,
			fmt.Sprintf("entry point function '%s' not found", entrypoint.EntryFunction)).
			expect("fn "+entrypoint.EntryFunction, "no entry point"))
		return nil, diags
	}

	var routeAttrs []entrypoint.Attribute
	for _, attr := range main.Attributes {
		if IsRouteAttribute(attr.Text) {
			routeAttrs = append(routeAttrs, attr)
		}
	}

	switch len(routeAttrs) {
	case 0:
		diags = append(diags, newDiagnostic(MissingAnnotation, main.Location,
			fmt.Sprintf("missing route annotation on entry point '%s'", entrypoint.EntryFunction)).
			expect("a route attribute above fn "+entrypoint.EntryFunction, "none").
			example(RenderAttribute(MethodGet, "/some/path")))
		return nil, diags
	case 1:
	default:
		for _, extra := range routeAttrs[1:] {
			diags = append(diags, newDiagnostic(DuplicateAnnotation, extra.Location,
				fmt.Sprintf("duplicate route annotation: '%s' may declare only one route", entrypoint.EntryFunction)).
				expect("1 route attribute", fmt.Sprintf("%d route attributes", len(routeAttrs))))
		}
		return nil, diags
	}

	route, err := p.Process(routeAttrs[0], main.Name)
	if err != nil {
		diags = append(diags, err.(*Diagnostic))
		return nil, diags
	}
	return route, diags
}
