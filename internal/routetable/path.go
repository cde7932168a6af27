package routetable

import (
	"fmt"
	"strings"

	"github.com/toyz/infrabuilder/internal/errors"
)

// PathPartType represents the type of a route path segment
type PathPartType int

const (
	StaticPart PathPartType = iota
	ParameterPart
	GreedyPart // {name+}, matches the remainder of the path
)

// PathPart is a single segment of a route path
type PathPart struct {
	Type  PathPartType
	Value string // literal text for static parts, the parameter name otherwise
}

// RoutePath is a validated route path such as /users/{id} or /files/{path+}
type RoutePath string

// Raw returns the path as written
func (p RoutePath) Raw() string {
	return string(p)
}

// Parts splits the path into segments. The root path has no parts and a
// trailing slash does not produce an empty part.
func (p RoutePath) Parts() []PathPart {
	trimmed := strings.Trim(string(p), "/")
	if trimmed == "" {
		return nil
	}

	segments := strings.Split(trimmed, "/")
	parts := make([]PathPart, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, classifySegment(seg))
	}
	return parts
}

// Params returns the parameter names in order of appearance
func (p RoutePath) Params() []string {
	var names []string
	for _, part := range p.Parts() {
		if part.Type != StaticPart {
			names = append(names, part.Value)
		}
	}
	return names
}

// Pattern renders the path with parameter names erased, so that paths routing
// the same requests compare equal
func (p RoutePath) Pattern() string {
	var b strings.Builder
	for _, part := range p.Parts() {
		b.WriteByte('/')
		switch part.Type {
		case ParameterPart:
			b.WriteString("{}")
		case GreedyPart:
			b.WriteString("{+}")
		default:
			b.WriteString(part.Value)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// ParsePath validates raw against the route path syntax:
// a leading slash, static or {name} segments, an optional final {name+}
// segment, unique parameter names and no empty inner segments.
func ParsePath(raw string) (RoutePath, error) {
	if raw == "" {
		return "", pathError(raw, "path is empty")
	}
	if raw[0] != '/' {
		return "", pathError(raw, "path must start with '/'")
	}
	if strings.ContainsAny(raw, "?# \t\r\n") {
		return "", pathError(raw, "path must not contain whitespace, query or fragment characters")
	}

	p := RoutePath(raw)
	segments := strings.Split(strings.TrimSuffix(raw[1:], "/"), "/")
	if raw == "/" {
		return p, nil
	}

	seen := make(map[string]bool)
	for i, seg := range segments {
		if seg == "" {
			return "", pathError(raw, fmt.Sprintf("empty segment at position %d", i+1))
		}

		part := classifySegment(seg)
		switch part.Type {
		case StaticPart:
			if strings.ContainsAny(seg, "{}") {
				return "", pathError(raw, fmt.Sprintf("segment %q mixes text and parameter braces", seg))
			}
			continue
		case GreedyPart:
			if i != len(segments)-1 {
				return "", pathError(raw, fmt.Sprintf("greedy parameter {%s+} must be the last segment", part.Value))
			}
		}

		if !isIdentifier(part.Value) {
			return "", pathError(raw, fmt.Sprintf("invalid parameter name %q", part.Value))
		}
		if seen[part.Value] {
			return "", pathError(raw, fmt.Sprintf("duplicate parameter name %q", part.Value))
		}
		seen[part.Value] = true
	}

	return p, nil
}

// MustParsePath is like ParsePath but panics on invalid input
func MustParsePath(raw string) RoutePath {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func classifySegment(seg string) PathPart {
	if len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		inner := seg[1 : len(seg)-1]
		if name, ok := strings.CutSuffix(inner, "+"); ok {
			return PathPart{Type: GreedyPart, Value: name}
		}
		return PathPart{Type: ParameterPart, Value: inner}
	}
	return PathPart{Type: StaticPart, Value: seg}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func pathError(raw, msg string) *errors.BaseError {
	return errors.Newf(errors.RoutePathErrorCode, "invalid route path %q: %s", raw, msg).
		WithContext("path", raw).
		WithSuggestion("paths look like /users/{id} or /files/{path+}")
}
