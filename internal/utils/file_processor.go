package utils

import (
	"io/fs"
	"strings"
)

// FileProcessor walks a file system tree applying directory and file filters
type FileProcessor struct {
	fsys fs.FS
}

// NewFileProcessor creates a file processor over fsys
func NewFileProcessor(fsys fs.FS) *FileProcessor {
	return &FileProcessor{fsys: fsys}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be descended into
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// FileNameFilter matches files with exactly the given base name
func FileNameFilter(name string) FileFilter {
	return func(path string, info fs.DirEntry) bool {
		return !info.IsDir() && info.Name() == name
	}
}

// DefaultDirectoryFilter skips build output, dependency caches, VCS metadata and hidden directories
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"target":       true,
		"node_modules": true,
		"vendor":       true,
		".git":         true,
		".svn":         true,
		".hg":          true,
	}

	return func(path string, info fs.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		// the walk root is always entered
		if path == "." {
			return true
		}

		name := info.Name()
		if strings.HasPrefix(name, ".") {
			return false
		}

		return !skipDirs[name]
	}
}

// Walk visits every file under root accepted by the filters, in lexical order.
// fn returning false stops the walk.
func (fp *FileProcessor) Walk(root string, options FileWalkOptions, fn func(path string) bool) error {
	err := fs.WalkDir(fp.fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors && path != root {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			return err
		}

		if d.IsDir() {
			if options.DirectoryFilter != nil && !options.DirectoryFilter(path, d) {
				return fs.SkipDir
			}
			return nil
		}

		if options.FileFilter != nil && !options.FileFilter(path, d) {
			return nil
		}

		if !fn(path) {
			return fs.SkipAll
		}
		return nil
	})

	return err
}

// WalkFiles collects every file under root accepted by the filters
func (fp *FileProcessor) WalkFiles(root string, options FileWalkOptions) ([]string, error) {
	var matched []string
	err := fp.Walk(root, options, func(path string) bool {
		matched = append(matched, path)
		return true
	})
	return matched, err
}

// Exists reports whether path names a regular file
func (fp *FileProcessor) Exists(path string) bool {
	info, err := fs.Stat(fp.fsys, path)
	return err == nil && !info.IsDir()
}
