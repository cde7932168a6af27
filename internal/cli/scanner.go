package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/infrabuilder/internal/errors"
)

// ResolveRoot turns the positional root argument into an absolute directory path.
// A trailing "/..." is accepted and ignored since scanning is always recursive.
func ResolveRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", errors.UsageError("workspace root must not be empty")
	}

	base := strings.TrimSuffix(root, "/...")
	if base == "" {
		base = "."
	}

	cleanPath, err := filepath.Abs(base)
	if err != nil {
		return "", errors.WrapWithOperation("process", fmt.Sprintf("path resolution %s", base), err)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", errors.WrapFileSystemError("open workspace root", cleanPath, err).
			WithSuggestion("check that the directory exists and is readable")
	}
	if !info.IsDir() {
		return "", errors.New(errors.FileSystemErrorCode, fmt.Sprintf("workspace root '%s' is not a directory", cleanPath)).
			WithContext("path", cleanPath)
	}

	return cleanPath, nil
}
