package manifest

import (
	"io/fs"
	"path"
	"strings"

	"github.com/toyz/infrabuilder/internal/models"
)

const (
	defaultLibPath  = "src/lib.rs"
	defaultMainPath = "src/main.rs"
	defaultBinDir   = "src/bin"
)

// Targets lists the build targets of the package whose manifest lives in dir,
// applying cargo's target auto-discovery. Source paths are joined onto dir.
func (m *Manifest) Targets(fsys fs.FS, dir string) []models.Target {
	pkg := m.PackageName()
	var targets []models.Target

	exists := func(rel string) bool {
		info, err := fs.Stat(fsys, path.Join(dir, rel))
		return err == nil && !info.IsDir()
	}

	// library
	autolib := m.Package == nil || m.Package.Autolib == nil || *m.Package.Autolib
	if m.Lib != nil || (autolib && exists(defaultLibPath)) {
		lib := models.Target{
			Name:    strings.ReplaceAll(pkg, "-", "_"),
			Kinds:   []string{"lib"},
			SrcPath: path.Join(dir, defaultLibPath),
		}
		if m.Lib != nil {
			if m.Lib.Name != "" {
				lib.Name = m.Lib.Name
			}
			if m.Lib.Path != "" {
				lib.SrcPath = path.Join(dir, m.Lib.Path)
			}
			if len(m.Lib.CrateType) > 0 {
				lib.Kinds = append([]string(nil), m.Lib.CrateType...)
			}
		}
		targets = append(targets, lib)
	}

	// explicit binaries
	claimed := make(map[string]bool)
	for _, bin := range m.Bins {
		name := bin.Name
		if name == "" {
			name = pkg
		}
		src := bin.Path
		if src == "" {
			src = path.Join(defaultBinDir, name+".rs")
			if name == pkg && exists(defaultMainPath) {
				src = defaultMainPath
			}
		}
		claimed[name] = true
		claimed[path.Clean(src)] = true
		targets = append(targets, models.Target{
			Name:    name,
			Kinds:   []string{models.TargetKindBin},
			SrcPath: path.Join(dir, src),
		})
	}

	if m.Package != nil && m.Package.Autobins != nil && !*m.Package.Autobins {
		return targets
	}

	// inferred binaries
	addInferred := func(name, src string) {
		if claimed[name] || claimed[src] {
			return
		}
		claimed[name] = true
		targets = append(targets, models.Target{
			Name:    name,
			Kinds:   []string{models.TargetKindBin},
			SrcPath: path.Join(dir, src),
		})
	}

	if exists(defaultMainPath) {
		addInferred(pkg, defaultMainPath)
	}

	entries, err := fs.ReadDir(fsys, path.Join(dir, defaultBinDir))
	if err != nil {
		return targets
	}
	for _, entry := range entries {
		switch {
		case entry.IsDir():
			src := path.Join(defaultBinDir, entry.Name(), "main.rs")
			if exists(src) {
				addInferred(entry.Name(), src)
			}
		case strings.HasSuffix(entry.Name(), ".rs"):
			addInferred(strings.TrimSuffix(entry.Name(), ".rs"), path.Join(defaultBinDir, entry.Name()))
		}
	}

	return targets
}
