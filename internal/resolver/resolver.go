// Package resolver produces the dependency graph of a candidate unit, either
// from its manifest alone or by asking cargo.
package resolver

import (
	"context"
	"fmt"

	"github.com/toyz/infrabuilder/internal/models"
)

// Names of the available resolvers
const (
	ManifestResolverName = "manifest"
	CargoResolverName    = "cargo"
)

// Resolver builds the dependency graph of a unit
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, unit models.CandidateUnit) (*models.DependencyGraph, error)
}

// Names lists the resolver names accepted by New
func Names() []string {
	return []string{ManifestResolverName, CargoResolverName}
}

// Options carries what the individual resolvers need
type Options struct {
	Manifests ManifestSource // used by the manifest resolver
	Root      string         // workspace root on disk, used by the cargo resolver
	CargoPath string         // cargo executable, "cargo" when empty
}

// New returns the resolver registered under name
func New(name string, opts Options) (Resolver, error) {
	switch name {
	case "", ManifestResolverName:
		if opts.Manifests == nil {
			return nil, fmt.Errorf("manifest resolver requires a manifest source")
		}
		return NewManifestResolver(opts.Manifests), nil
	case CargoResolverName:
		r := NewCargoResolver(opts.Root)
		if opts.CargoPath != "" {
			r.CargoPath = opts.CargoPath
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown resolver %q", name)
	}
}
