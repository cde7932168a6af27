package utils

import "fmt"

// ErrorWrappers provide the common "failed to <verb> <item>" wrapping used by
// helpers that do not carry an error code.

// WrapReadError wraps an error with a "failed to read" message
func WrapReadError(item string, err error) error {
	return fmt.Errorf("failed to read %s: %w", item, err)
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, err error) error {
	return fmt.Errorf("failed to parse %s: %w", item, err)
}

// WrapValidateError wraps an error with a "failed to validate" message
func WrapValidateError(item string, err error) error {
	return fmt.Errorf("failed to validate %s: %w", item, err)
}
