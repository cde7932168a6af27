package manifest

import (
	"io/fs"

	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/utils"
)

// Loader reads manifests from a file system, caching them per path
type Loader struct {
	fsys  fs.FS
	cache *utils.Cache[string, *Manifest]
}

// NewLoader creates a loader reading from fsys
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{
		fsys:  fsys,
		cache: utils.NewCache[string, *Manifest](),
	}
}

// FS returns the file system the loader reads from
func (l *Loader) FS() fs.FS {
	return l.fsys
}

// Load returns the parsed manifest at path
func (l *Loader) Load(path string) (*Manifest, error) {
	if m, ok := l.cache.Get(path); ok {
		return m, nil
	}

	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, errors.WrapManifestError(path, err)
	}

	l.cache.Set(path, m)
	return m, nil
}
