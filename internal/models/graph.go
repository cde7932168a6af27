package models

// DependencyKind is the section a dependency was declared in
type DependencyKind int

const (
	DependencyNormal DependencyKind = iota
	DependencyBuild
	DependencyDev
)

// String returns the cargo name of the kind
func (k DependencyKind) String() string {
	switch k {
	case DependencyBuild:
		return "build"
	case DependencyDev:
		return "dev"
	default:
		return "normal"
	}
}

// TargetKindBin is the target kind of an executable
const TargetKindBin = "bin"

// Target is a build target of a package
type Target struct {
	Name    string   `json:"name"`
	Kinds   []string `json:"kind"`
	SrcPath string   `json:"src_path"`
}

// HasKind reports whether the target has the given kind
func (t Target) HasKind(kind string) bool {
	for _, k := range t.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Dependency is one declared dependency of a package
type Dependency struct {
	Name        string         // package name, after resolving renames
	Rename      string         // local alias when declared under another key
	Requirement string         // version requirement as written
	Optional    bool           // only enabled through a feature
	Kind        DependencyKind // normal, build or dev
	Features    []string       // features requested on the dependency
}

// DependencyGraph is the resolved view of one unit: its targets and direct dependencies
type DependencyGraph struct {
	Package      string
	Targets      []Target
	Dependencies []Dependency
}

// HasTargetKind reports whether any target has the given kind
func (g *DependencyGraph) HasTargetKind(kind string) bool {
	for _, t := range g.Targets {
		if t.HasKind(kind) {
			return true
		}
	}
	return false
}

// HasDependency reports whether a non-dev dependency on the named package exists.
// Optional dependencies count, since resolution assumes all features enabled.
func (g *DependencyGraph) HasDependency(name string) bool {
	for _, d := range g.Dependencies {
		if d.Kind != DependencyDev && d.Name == name {
			return true
		}
	}
	return false
}
