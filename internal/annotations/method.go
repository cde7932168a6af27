package annotations

import (
	"fmt"
	"strings"
)

// HTTPMethod is one of the HTTP verbs a route may be bound to
type HTTPMethod int

// Declaration order is the order used when rendering the vocabulary.
const (
	MethodGet HTTPMethod = iota
	MethodPost
	MethodPut
	MethodDelete
	MethodHead
	MethodOptions
)

var methodNames = [...]string{
	MethodGet:     "GET",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodHead:    "HEAD",
	MethodOptions: "OPTIONS",
}

// Methods returns the accepted HTTP methods in declaration order
func Methods() []HTTPMethod {
	methods := make([]HTTPMethod, len(methodNames))
	for i := range methodNames {
		methods[i] = HTTPMethod(i)
	}
	return methods
}

// String returns the canonical upper-case token
func (m HTTPMethod) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("HTTPMethod(%d)", int(m))
	}
	return methodNames[m]
}

// MarshalText renders the method as its canonical token
func (m HTTPMethod) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(methodNames) {
		return nil, fmt.Errorf("unknown HTTP method value %d", int(m))
	}
	return []byte(methodNames[m]), nil
}

// UnmarshalText parses a method token case-insensitively
func (m *HTTPMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnknownMethodError is returned for tokens outside the vocabulary
type UnknownMethodError struct {
	Raw string // token as written, not normalized
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("invalid HTTP method '%s'. Valid HTTP method values are %s", e.Raw, RenderMethods())
}

// ParseMethod converts a token to an HTTPMethod, ignoring case
func ParseMethod(token string) (HTTPMethod, error) {
	normalized := strings.ToUpper(token)
	for i, name := range methodNames {
		if name == normalized {
			return HTTPMethod(i), nil
		}
	}
	return 0, &UnknownMethodError{Raw: token}
}

// RenderMethods renders methods as "A, B, C or D". With no arguments the whole
// vocabulary is rendered.
func RenderMethods(methods ...HTTPMethod) string {
	if len(methods) == 0 {
		methods = Methods()
	}
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.String()
	}
	return JoinOr(names)
}

// JoinOr joins items with ", " and places " or " before the last one
func JoinOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}
