package manifest

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/models"
)

const lambdaManifest = `
[package]
name = "users-api"
version = "0.1.0"
edition = "2021"

[dependencies]
lambda_http = "0.13"
lambda_runtime = { version = "0.13", optional = true }
tokio = { version = "1", features = ["macros", "rt-multi-thread"] }
infra = { package = "infra_builder", path = "../infra_builder" }
shared = { workspace = true }

[build-dependencies]
cc = "1.0"

[dev-dependencies]
mockall = "0.12"

[target.'cfg(unix)'.dependencies]
libc = "0.2"

[features]
default = ["lambda_runtime"]
`

func TestParseManifest(t *testing.T) {
	m, err := Parse([]byte(lambdaManifest))
	require.NoError(t, err)

	assert.Equal(t, "users-api", m.PackageName())
	assert.Equal(t, []string{"lambda_runtime"}, m.Features["default"])

	deps := m.Dependencies()
	byName := make(map[string]models.Dependency)
	for _, d := range deps {
		byName[d.Name] = d
	}
	require.Len(t, deps, 8)

	assert.Equal(t, "0.13", byName["lambda_http"].Requirement)
	assert.True(t, byName["lambda_runtime"].Optional)
	assert.Equal(t, []string{"macros", "rt-multi-thread"}, byName["tokio"].Features)

	infra := byName["infra_builder"]
	assert.Equal(t, "infra", infra.Rename)
	assert.Equal(t, "path+../infra_builder", infra.Requirement)

	assert.Equal(t, "workspace", byName["shared"].Requirement)
	assert.Equal(t, models.DependencyBuild, byName["cc"].Kind)
	assert.Equal(t, models.DependencyDev, byName["mockall"].Kind)
	assert.Equal(t, models.DependencyNormal, byName["libc"].Kind)
}

func TestParseManifestOrdersDependenciesBySection(t *testing.T) {
	m, err := Parse([]byte(lambdaManifest))
	require.NoError(t, err)

	var names []string
	for _, d := range m.Dependencies() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"infra_builder", "lambda_http", "lambda_runtime", "shared", "tokio",
		"cc",
		"mockall",
		"libc",
	}, names)
}

func TestParseManifestWithoutPackage(t *testing.T) {
	m, err := Parse([]byte("[workspace]\nmembers = [\"a\", \"b\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, "", m.PackageName())
	assert.Empty(t, m.Dependencies())
}

func TestParseManifestErrors(t *testing.T) {
	_, err := Parse([]byte("[package\nname = \"broken\""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line ")

	_, err = Parse([]byte("[dependencies]\ntokio = 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `dependency "tokio"`)
}

func targetNames(targets []models.Target) map[string]models.Target {
	out := make(map[string]models.Target)
	for _, t := range targets {
		out[t.Name+"/"+t.Kinds[0]] = t
	}
	return out
}

func TestTargetsAutoDiscovery(t *testing.T) {
	fsys := fstest.MapFS{
		"svc/Cargo.toml":           {Data: []byte("[package]\nname = \"my-svc\"\n")},
		"svc/src/main.rs":          {Data: []byte("fn main() {}")},
		"svc/src/lib.rs":           {Data: []byte("")},
		"svc/src/bin/migrate.rs":   {Data: []byte("fn main() {}")},
		"svc/src/bin/seed/main.rs": {Data: []byte("fn main() {}")},
		"svc/src/bin/notes.txt":    {Data: []byte("")},
	}
	m, err := Parse(fsys["svc/Cargo.toml"].Data)
	require.NoError(t, err)

	targets := targetNames(m.Targets(fsys, "svc"))
	require.Len(t, targets, 4)

	assert.Equal(t, "svc/src/lib.rs", targets["my_svc/lib"].SrcPath)
	assert.Equal(t, "svc/src/main.rs", targets["my-svc/bin"].SrcPath)
	assert.Equal(t, "svc/src/bin/migrate.rs", targets["migrate/bin"].SrcPath)
	assert.Equal(t, "svc/src/bin/seed/main.rs", targets["seed/bin"].SrcPath)
}

func TestTargetsAutobinsDisabled(t *testing.T) {
	fsys := fstest.MapFS{
		"Cargo.toml": {Data: []byte(`
[package]
name = "library-only"
autobins = false

[lib]
path = "src/main.rs"
crate-type = ["cdylib", "rlib"]
`)},
		"src/main.rs": {Data: []byte("pub fn handler() {}")},
	}
	m, err := Parse(fsys["Cargo.toml"].Data)
	require.NoError(t, err)

	targets := m.Targets(fsys, ".")
	require.Len(t, targets, 1)
	assert.Equal(t, "library_only", targets[0].Name)
	assert.Equal(t, []string{"cdylib", "rlib"}, targets[0].Kinds)
	assert.Equal(t, "src/main.rs", targets[0].SrcPath)
	assert.False(t, targets[0].HasKind(models.TargetKindBin))
}

func TestTargetsExplicitBins(t *testing.T) {
	fsys := fstest.MapFS{
		"Cargo.toml": {Data: []byte(`
[package]
name = "tool"

[[bin]]
name = "tool"

[[bin]]
name = "worker"
path = "cmd/worker.rs"
`)},
		"src/main.rs":   {Data: []byte("fn main() {}")},
		"cmd/worker.rs": {Data: []byte("fn main() {}")},
	}
	m, err := Parse(fsys["Cargo.toml"].Data)
	require.NoError(t, err)

	targets := targetNames(m.Targets(fsys, "."))
	require.Len(t, targets, 2, "src/main.rs is claimed by the explicit bin")
	assert.Equal(t, "src/main.rs", targets["tool/bin"].SrcPath)
	assert.Equal(t, "cmd/worker.rs", targets["worker/bin"].SrcPath)
}

func TestLoaderCachesManifests(t *testing.T) {
	fsys := fstest.MapFS{
		"a/Cargo.toml": {Data: []byte("[package]\nname = \"a\"\n")},
	}
	loader := NewLoader(fsys)

	first, err := loader.Load("a/Cargo.toml")
	require.NoError(t, err)
	second, err := loader.Load("a/Cargo.toml")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoaderErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"bad/Cargo.toml": {Data: []byte("[package")},
	}
	loader := NewLoader(fsys)

	_, err := loader.Load("missing/Cargo.toml")
	require.Error(t, err)
	assert.Equal(t, errors.FileSystemErrorCode, errors.CodeOf(err))

	_, err = loader.Load("bad/Cargo.toml")
	require.Error(t, err)
	assert.Equal(t, errors.ManifestErrorCode, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "bad/Cargo.toml")
}
