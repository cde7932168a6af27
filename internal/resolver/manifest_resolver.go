package resolver

import (
	"context"
	"io/fs"

	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/manifest"
	"github.com/toyz/infrabuilder/internal/models"
)

// ManifestSource supplies parsed manifests and the file system they live in
type ManifestSource interface {
	Load(path string) (*manifest.Manifest, error)
	FS() fs.FS
}

// ManifestResolver derives the graph from the manifest and cargo's target
// auto-discovery rules without running any external tool
type ManifestResolver struct {
	source ManifestSource
}

// NewManifestResolver creates a resolver reading manifests from source
func NewManifestResolver(source ManifestSource) *ManifestResolver {
	return &ManifestResolver{source: source}
}

// Name implements Resolver
func (r *ManifestResolver) Name() string {
	return ManifestResolverName
}

// Resolve implements Resolver
func (r *ManifestResolver) Resolve(ctx context.Context, unit models.CandidateUnit) (*models.DependencyGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := r.source.Load(unit.ManifestPath)
	if err != nil {
		return nil, errors.WrapResolutionError(r.Name(), unit.Name, err)
	}

	return &models.DependencyGraph{
		Package:      m.PackageName(),
		Targets:      m.Targets(r.source.FS(), unit.Dir()),
		Dependencies: m.Dependencies(),
	}, nil
}
