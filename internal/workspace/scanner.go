// Package workspace discovers candidate deployment units under a root directory.
package workspace

import (
	stderrors "errors"
	"io/fs"
	"iter"
	"os"
	"path"

	"github.com/toyz/infrabuilder/internal/manifest"
	"github.com/toyz/infrabuilder/internal/models"
	"github.com/toyz/infrabuilder/internal/utils"
)

// EntryPointFile is the conventional entry-point source of a unit, relative to its manifest
const EntryPointFile = "src/main.rs"

var (
	// ErrMissingPackageName marks manifests without a [package] name, such as virtual workspace roots
	ErrMissingPackageName = stderrors.New("manifest declares no package.name")
	// ErrMissingEntryPoint marks packages without src/main.rs
	ErrMissingEntryPoint = stderrors.New("no " + EntryPointFile + " next to manifest")
)

// SkipFunc receives manifests the scanner passed over and why
type SkipFunc func(manifestPath string, reason error)

// Scanner walks a file system for Cargo manifests describing runnable packages
type Scanner struct {
	fsys   fs.FS
	loader *manifest.Loader
	files  *utils.FileProcessor

	// OnSkip, when set, is told about every manifest that did not yield a unit
	OnSkip SkipFunc
}

// NewScanner creates a scanner over fsys
func NewScanner(fsys fs.FS) *Scanner {
	return NewScannerWithLoader(manifest.NewLoader(fsys))
}

// NewScannerWithLoader creates a scanner sharing an existing manifest loader
func NewScannerWithLoader(loader *manifest.Loader) *Scanner {
	return &Scanner{
		fsys:   loader.FS(),
		loader: loader,
		files:  utils.NewFileProcessor(loader.FS()),
	}
}

// NewDirScanner creates a scanner rooted at a directory on disk
func NewDirScanner(root string) *Scanner {
	return NewScanner(os.DirFS(root))
}

// Loader returns the manifest loader used by the scanner
func (s *Scanner) Loader() *manifest.Loader {
	return s.loader
}

// Scan lazily yields one CandidateUnit per manifest that names a package and
// has an entry point beside it. Units are yielded in lexical path order.
func (s *Scanner) Scan() iter.Seq[models.CandidateUnit] {
	return func(yield func(models.CandidateUnit) bool) {
		_ = s.files.Walk(".", utils.FileWalkOptions{
			FileFilter:      utils.FileNameFilter(manifest.FileName),
			DirectoryFilter: utils.DefaultDirectoryFilter(),
			SkipErrors:      true,
		}, func(manifestPath string) bool {
			unit, err := s.candidate(manifestPath)
			if err != nil {
				s.skip(manifestPath, err)
				return true
			}
			return yield(unit)
		})
	}
}

// Collect runs Scan to completion
func (s *Scanner) Collect() []models.CandidateUnit {
	var units []models.CandidateUnit
	for unit := range s.Scan() {
		units = append(units, unit)
	}
	return units
}

func (s *Scanner) candidate(manifestPath string) (models.CandidateUnit, error) {
	m, err := s.loader.Load(manifestPath)
	if err != nil {
		return models.CandidateUnit{}, err
	}

	name := m.PackageName()
	if name == "" {
		return models.CandidateUnit{}, ErrMissingPackageName
	}

	entry := path.Join(path.Dir(manifestPath), EntryPointFile)
	if !s.files.Exists(entry) {
		return models.CandidateUnit{}, ErrMissingEntryPoint
	}

	return models.CandidateUnit{
		Name:           name,
		ManifestPath:   manifestPath,
		EntryPointPath: entry,
	}, nil
}

func (s *Scanner) skip(manifestPath string, reason error) {
	if s.OnSkip != nil {
		s.OnSkip(manifestPath, reason)
	}
}
