package errors

import "fmt"

// Common error wrapping patterns used throughout the codebase

// WrapWithOperation wraps an error with an operation context
func WrapWithOperation(operation, item string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s %s", operation, item)
	return Wrap(UnknownErrorCode, message, cause)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapManifestError wraps a manifest read or decode failure
func WrapManifestError(path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to load manifest '%s'", path)
	return Wrap(ManifestErrorCode, message, cause).
		WithContext("manifest", path)
}

// WrapResolutionError wraps dependency graph resolution failures
func WrapResolutionError(resolver, unit string, cause error) *BaseError {
	message := fmt.Sprintf("failed to resolve dependencies of '%s' with %s resolver", unit, resolver)
	return Wrap(ResolutionErrorCode, message, cause).
		WithContext("resolver", resolver).
		WithContext("unit", unit)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", configType, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("config_type", configType)
}

// UsageError reports invocation misuse of the command surface
func UsageError(format string, args ...interface{}) *BaseError {
	return Newf(UsageErrorCode, format, args...)
}

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err CodedError) {
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}
