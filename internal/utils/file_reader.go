package utils

import (
	"io/fs"
	"path"
	"strings"
)

// FileReader reads source files from a file system with caching
type FileReader struct {
	fsys         fs.FS
	contentCache *Cache[string, []byte]
}

// NewFileReader creates a new FileReader over fsys
func NewFileReader(fsys fs.FS) *FileReader {
	return &FileReader{
		fsys:         fsys,
		contentCache: NewCache[string, []byte](),
	}
}

// ReadFile returns the contents of a file, reading it at most once
func (fr *FileReader) ReadFile(filePath string) ([]byte, error) {
	cleanPath, err := fr.validateAndCleanPath(filePath)
	if err != nil {
		return nil, err
	}

	return fr.contentCache.GetOrLoad(cleanPath, func() ([]byte, error) {
		content, err := fs.ReadFile(fr.fsys, cleanPath)
		if err != nil {
			return nil, WrapReadError(cleanPath, err)
		}
		return content, nil
	})
}

// ClearCache drops all cached file contents
func (fr *FileReader) ClearCache() {
	fr.contentCache.Clear()
}

// validateAndCleanPath rejects paths that are not valid fs.FS names after cleaning
func (fr *FileReader) validateAndCleanPath(filePath string) (string, error) {
	if filePath == "" {
		return "", WrapValidateError("file path", fs.ErrInvalid)
	}

	cleanPath := path.Clean(strings.ReplaceAll(filePath, "\\", "/"))
	if !fs.ValidPath(cleanPath) {
		return "", WrapValidateError("file path "+filePath, fs.ErrInvalid)
	}

	return cleanPath, nil
}
