// Package manifest decodes Cargo.toml package manifests and derives the
// targets and dependencies cargo would see for them.
package manifest

import (
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/toyz/infrabuilder/internal/models"
)

// FileName is the manifest file name looked for in every directory
const FileName = "Cargo.toml"

// Manifest is the subset of a Cargo manifest relevant to deployment
type Manifest struct {
	Package  *Package
	Lib      *LibTarget
	Bins     []BinTarget
	Features map[string][]string

	deps []models.Dependency
}

// Package is the [package] table
type Package struct {
	Name     string `toml:"name"`
	Autobins *bool  `toml:"autobins"`
	Autolib  *bool  `toml:"autolib"`
}

// LibTarget is the [lib] table
type LibTarget struct {
	Name      string   `toml:"name"`
	Path      string   `toml:"path"`
	CrateType []string `toml:"crate-type"`
}

// BinTarget is one [[bin]] entry
type BinTarget struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

type platformTable struct {
	Dependencies      map[string]any `toml:"dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
}

type section struct {
	table map[string]any
	kind  models.DependencyKind
}

type document struct {
	Package           *Package                 `toml:"package"`
	Lib               *LibTarget               `toml:"lib"`
	Bins              []BinTarget              `toml:"bin"`
	Dependencies      map[string]any           `toml:"dependencies"`
	BuildDependencies map[string]any           `toml:"build-dependencies"`
	DevDependencies   map[string]any           `toml:"dev-dependencies"`
	Target            map[string]platformTable `toml:"target"`
	Features          map[string][]string      `toml:"features"`
}

// Parse decodes a manifest
func Parse(data []byte) (*Manifest, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		var derr *toml.DecodeError
		if stderrors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return nil, err
	}

	m := &Manifest{
		Package:  doc.Package,
		Lib:      doc.Lib,
		Bins:     doc.Bins,
		Features: doc.Features,
	}

	sections := []section{
		{doc.Dependencies, models.DependencyNormal},
		{doc.BuildDependencies, models.DependencyBuild},
		{doc.DevDependencies, models.DependencyDev},
	}
	for _, cfg := range sortedKeys(doc.Target) {
		platform := doc.Target[cfg]
		sections = append(sections,
			section{platform.Dependencies, models.DependencyNormal},
			section{platform.BuildDependencies, models.DependencyBuild},
			section{platform.DevDependencies, models.DependencyDev},
		)
	}

	for _, sec := range sections {
		for _, key := range sortedKeys(sec.table) {
			dep, err := decodeDependency(key, sec.table[key], sec.kind)
			if err != nil {
				return nil, err
			}
			m.deps = append(m.deps, dep)
		}
	}

	return m, nil
}

// PackageName returns package.name, or "" for manifests without a [package] table
func (m *Manifest) PackageName() string {
	if m.Package == nil {
		return ""
	}
	return m.Package.Name
}

// Dependencies returns every declared dependency, grouped by section
func (m *Manifest) Dependencies() []models.Dependency {
	out := make([]models.Dependency, len(m.deps))
	copy(out, m.deps)
	return out
}

// decodeDependency accepts both `name = "1.0"` and `name = { version = "1.0", ... }`
func decodeDependency(key string, value any, kind models.DependencyKind) (models.Dependency, error) {
	dep := models.Dependency{Name: key, Kind: kind}

	switch v := value.(type) {
	case string:
		dep.Requirement = v
	case map[string]any:
		if s, ok := v["version"].(string); ok {
			dep.Requirement = s
		}
		if pkg, ok := v["package"].(string); ok && pkg != "" && pkg != key {
			dep.Name = pkg
			dep.Rename = key
		}
		if opt, ok := v["optional"].(bool); ok {
			dep.Optional = opt
		}
		if features, ok := v["features"].([]any); ok {
			for _, f := range features {
				if s, ok := f.(string); ok {
					dep.Features = append(dep.Features, s)
				}
			}
		}
		if dep.Requirement == "" {
			switch {
			case v["path"] != nil:
				dep.Requirement = fmt.Sprintf("path+%v", v["path"])
			case v["git"] != nil:
				dep.Requirement = fmt.Sprintf("git+%v", v["git"])
			case v["workspace"] == true:
				dep.Requirement = "workspace"
			}
		}
	default:
		return dep, fmt.Errorf("dependency %q: expected a version string or a table, found %T", key, value)
	}

	return dep, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
