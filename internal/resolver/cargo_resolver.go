package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/models"
)

// CommandFunc builds the process used to run cargo
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// CargoResolver asks `cargo metadata` for the unit's targets and dependencies,
// with every feature enabled
type CargoResolver struct {
	Root      string
	CargoPath string
	Command   CommandFunc
}

// NewCargoResolver creates a resolver for units under root
func NewCargoResolver(root string) *CargoResolver {
	return &CargoResolver{
		Root:      root,
		CargoPath: "cargo",
		Command:   exec.CommandContext,
	}
}

// Name implements Resolver
func (r *CargoResolver) Name() string {
	return CargoResolverName
}

// Resolve implements Resolver
func (r *CargoResolver) Resolve(ctx context.Context, unit models.CandidateUnit) (*models.DependencyGraph, error) {
	manifestPath := filepath.Join(r.Root, filepath.FromSlash(unit.ManifestPath))
	cmd := r.Command(ctx, r.CargoPath,
		"metadata",
		"--format-version", "1",
		"--all-features",
		"--no-deps",
		"--manifest-path", manifestPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, errors.WrapResolutionError(r.Name(), unit.Name, err)
	}

	graph, err := DecodeMetadata(stdout.Bytes(), unit.Name)
	if err != nil {
		return nil, errors.WrapResolutionError(r.Name(), unit.Name, err)
	}
	return graph, nil
}

type metadata struct {
	Packages []metadataPackage `json:"packages"`
}

type metadataPackage struct {
	Name         string               `json:"name"`
	ManifestPath string               `json:"manifest_path"`
	Targets      []models.Target      `json:"targets"`
	Dependencies []metadataDependency `json:"dependencies"`
}

type metadataDependency struct {
	Name     string   `json:"name"`
	Rename   *string  `json:"rename"`
	Req      string   `json:"req"`
	Kind     *string  `json:"kind"`
	Optional bool     `json:"optional"`
	Features []string `json:"features"`
}

// DecodeMetadata extracts the named package from `cargo metadata` JSON output
func DecodeMetadata(data []byte, pkg string) (*models.DependencyGraph, error) {
	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode cargo metadata: %w", err)
	}

	for _, p := range meta.Packages {
		if p.Name != pkg {
			continue
		}

		graph := &models.DependencyGraph{Package: p.Name, Targets: p.Targets}
		for _, d := range p.Dependencies {
			dep := models.Dependency{
				Name:        d.Name,
				Requirement: d.Req,
				Optional:    d.Optional,
				Features:    d.Features,
				Kind:        dependencyKind(d.Kind),
			}
			if d.Rename != nil {
				dep.Rename = *d.Rename
			}
			graph.Dependencies = append(graph.Dependencies, dep)
		}
		return graph, nil
	}

	return nil, fmt.Errorf("package %q not found in cargo metadata", pkg)
}

// dependencyKind maps cargo's kind field: null for normal, "build" or "dev"
func dependencyKind(kind *string) models.DependencyKind {
	if kind == nil {
		return models.DependencyNormal
	}
	switch *kind {
	case "build":
		return models.DependencyBuild
	case "dev":
		return models.DependencyDev
	default:
		return models.DependencyNormal
	}
}
