package cli

import (
	"context"
	"io/fs"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/infrabuilder/internal/annotations"
	"github.com/toyz/infrabuilder/internal/entrypoint"
	"github.com/toyz/infrabuilder/internal/eligibility"
	"github.com/toyz/infrabuilder/internal/manifest"
	"github.com/toyz/infrabuilder/internal/models"
	"github.com/toyz/infrabuilder/internal/resolver"
	"github.com/toyz/infrabuilder/internal/routetable"
	"github.com/toyz/infrabuilder/internal/utils"
	"github.com/toyz/infrabuilder/internal/workspace"
)

// UnitReport is everything learned about one candidate unit
type UnitReport struct {
	Unit        models.CandidateUnit
	Graph       *models.DependencyGraph
	ResolveErr  error // resolution failed; the unit is skipped
	Eligibility models.EligibilityResult
	EntryErr    error // the entry point could not be read or parsed
	Route       *annotations.RouteDescriptor
	Diagnostics []*annotations.Diagnostic
}

// Deployable reports whether the unit passed eligibility
func (u *UnitReport) Deployable() bool {
	return u.ResolveErr == nil && u.Eligibility.Deployable()
}

// SkippedManifest is a manifest the scanner passed over
type SkippedManifest struct {
	Path   string
	Reason error
}

// Report is the outcome of a discovery run
type Report struct {
	Root     string
	Units    []*UnitReport // in scan order
	Skipped  []SkippedManifest
	Result   *routetable.Result
	Duration time.Duration
}

// DeployableCount returns the number of deployable units
func (r *Report) DeployableCount() int {
	n := 0
	for _, u := range r.Units {
		if u.Deployable() {
			n++
		}
	}
	return n
}

// DiagnosticCount returns the number of annotation diagnostics across all units
func (r *Report) DiagnosticCount() int {
	n := 0
	for _, u := range r.Units {
		n += len(u.Diagnostics)
	}
	return n
}

// Err returns the route conflict error, if any
func (r *Report) Err() error {
	if r.Result == nil {
		return nil
	}
	return r.Result.Err()
}

// Discovery coordinates scanning, resolution, eligibility, extraction and assembly
type Discovery struct {
	config      *Config
	diagnostics *utils.DiagnosticSystem
	processor   *annotations.Processor
	validator   *eligibility.Validator

	// Resolver overrides the configured resolver when set
	Resolver resolver.Resolver
}

// NewDiscovery creates a discovery pipeline
func NewDiscovery(config *Config, diagnostics *utils.DiagnosticSystem) *Discovery {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return &Discovery{
		config:      config,
		diagnostics: diagnostics,
		processor:   annotations.NewProcessor(),
		validator:   eligibility.NewValidator(config.RequiredDependencies...),
	}
}

// Run discovers units under root on disk. A root that does not exist is fatal.
func (d *Discovery) Run(ctx context.Context, root string) (*Report, error) {
	abs, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}
	return d.RunFS(ctx, os.DirFS(abs), abs)
}

// RunFS discovers units in fsys; root is used for reporting and by the cargo resolver
func (d *Discovery) RunFS(ctx context.Context, fsys fs.FS, root string) (*Report, error) {
	start := time.Now()
	report := &Report{Root: root}

	loader := manifest.NewLoader(fsys)
	res := d.Resolver
	if res == nil {
		var err error
		res, err = resolver.New(d.config.Resolver, resolver.Options{
			Manifests: loader,
			Root:      root,
			CargoPath: d.config.CargoPath,
		})
		if err != nil {
			return nil, err
		}
	}
	d.diagnostics.Debug("Using %s resolver, concurrency %d", res.Name(), d.config.Concurrency)

	scanner := workspace.NewScannerWithLoader(loader)
	scanner.OnSkip = func(manifestPath string, reason error) {
		d.diagnostics.Debug("Skipping %s: %v", manifestPath, reason)
		report.Skipped = append(report.Skipped, SkippedManifest{Path: manifestPath, Reason: reason})
	}

	reader := utils.NewFileReader(fsys)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(d.config.Concurrency, 1))

	for unit := range scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		d.diagnostics.Verbose("Found candidate %s", unit)

		ur := &UnitReport{Unit: unit}
		report.Units = append(report.Units, ur)
		g.Go(func() error {
			d.processUnit(gctx, res, reader, ur)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []models.Route
	for _, ur := range report.Units {
		if ur.Route == nil {
			continue
		}
		entries = append(entries, models.Route{
			RouteDescriptor: *ur.Route,
			Unit:            ur.Unit.Name,
			ManifestPath:    ur.Unit.ManifestPath,
		})
	}

	opts := routetable.DefaultOptions()
	opts.StrictPaths = d.config.StrictPaths
	report.Result = routetable.Assemble(entries, opts)
	report.Duration = time.Since(start)

	return report, nil
}

func (d *Discovery) processUnit(ctx context.Context, res resolver.Resolver, reader *utils.FileReader, ur *UnitReport) {
	graph, err := res.Resolve(ctx, ur.Unit)
	if err != nil {
		ur.ResolveErr = err
		ur.Eligibility = d.validator.Validate(ur.Unit, nil)
		return
	}
	ur.Graph = graph
	ur.Eligibility = d.validator.Validate(ur.Unit, graph)
	if !ur.Eligibility.Deployable() {
		return
	}

	source, err := reader.ReadFile(ur.Unit.EntryPointPath)
	if err != nil {
		ur.EntryErr = err
		return
	}

	file, err := entrypoint.Parse(ur.Unit.EntryPointPath, source)
	if err != nil {
		ur.EntryErr = utils.WrapParseError(ur.Unit.EntryPointPath, err)
		return
	}

	ur.Route, ur.Diagnostics = d.processor.ExtractEntryPoint(file)
}
