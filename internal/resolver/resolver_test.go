package resolver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/manifest"
	"github.com/toyz/infrabuilder/internal/models"
)

const metadataFixture = `{
  "packages": [
    {
      "name": "other",
      "manifest_path": "/ws/other/Cargo.toml",
      "targets": [],
      "dependencies": []
    },
    {
      "name": "users",
      "manifest_path": "/ws/users/Cargo.toml",
      "targets": [
        {"name": "users", "kind": ["bin"], "src_path": "/ws/users/src/main.rs"}
      ],
      "dependencies": [
        {"name": "lambda_http", "req": "^0.13", "kind": null, "rename": null, "optional": false, "features": []},
        {"name": "tokio", "req": "^1", "kind": null, "rename": "rt", "optional": true, "features": ["macros"]},
        {"name": "cc", "req": "^1", "kind": "build", "rename": null, "optional": false, "features": []},
        {"name": "mockall", "req": "^0.12", "kind": "dev", "rename": null, "optional": false, "features": []}
      ]
    }
  ],
  "version": 1
}`

func TestDecodeMetadata(t *testing.T) {
	graph, err := DecodeMetadata([]byte(metadataFixture), "users")
	require.NoError(t, err)

	assert.Equal(t, "users", graph.Package)
	require.Len(t, graph.Targets, 1)
	assert.True(t, graph.HasTargetKind(models.TargetKindBin))

	require.Len(t, graph.Dependencies, 4)
	tokio := graph.Dependencies[1]
	assert.Equal(t, "tokio", tokio.Name)
	assert.Equal(t, "rt", tokio.Rename)
	assert.True(t, tokio.Optional)
	assert.Equal(t, models.DependencyBuild, graph.Dependencies[2].Kind)
	assert.Equal(t, models.DependencyDev, graph.Dependencies[3].Kind)

	assert.True(t, graph.HasDependency("tokio"))
	assert.False(t, graph.HasDependency("mockall"))
}

func TestDecodeMetadataErrors(t *testing.T) {
	_, err := DecodeMetadata([]byte(metadataFixture), "missing")
	assert.ErrorContains(t, err, `package "missing" not found`)

	_, err = DecodeMetadata([]byte("not json"), "users")
	assert.ErrorContains(t, err, "decode cargo metadata")
}

// fakeCargo re-executes the test binary as a stand-in for cargo
func fakeCargo(mode string) CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HELPER_MODE="+mode)
		return cmd
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	args = args[1:]

	switch os.Getenv("HELPER_MODE") {
	case "ok":
		if strings.Join(args[1:5], " ") != "metadata --format-version 1 --all-features" {
			fmt.Fprintf(os.Stderr, "unexpected args: %v", args)
			os.Exit(2)
		}
		fmt.Print(metadataFixture)
	case "fail":
		fmt.Fprint(os.Stderr, "error: failed to parse manifest")
		os.Exit(101)
	}
}

func TestCargoResolver(t *testing.T) {
	r := NewCargoResolver("/ws")
	r.Command = fakeCargo("ok")

	graph, err := r.Resolve(context.Background(), models.CandidateUnit{Name: "users", ManifestPath: "users/Cargo.toml"})
	require.NoError(t, err)
	assert.Equal(t, "users", graph.Package)
	assert.True(t, graph.HasDependency("lambda_http"))
}

func TestCargoResolverFailure(t *testing.T) {
	r := NewCargoResolver("/ws")
	r.Command = fakeCargo("fail")

	_, err := r.Resolve(context.Background(), models.CandidateUnit{Name: "users", ManifestPath: "users/Cargo.toml"})
	require.Error(t, err)
	assert.Equal(t, errors.ResolutionErrorCode, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "failed to parse manifest")
}

func TestCargoResolverCancelled(t *testing.T) {
	r := NewCargoResolver("/ws")
	r.Command = fakeCargo("ok")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, models.CandidateUnit{Name: "users", ManifestPath: "users/Cargo.toml"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManifestResolver(t *testing.T) {
	fsys := fstest.MapFS{
		"users/Cargo.toml": {Data: []byte(`
[package]
name = "users"

[dependencies]
lambda_http = "0.13"
runtime = { package = "lambda_runtime", version = "0.13" }
`)},
		"users/src/main.rs": {Data: []byte("fn main() {}")},
	}
	r := NewManifestResolver(manifest.NewLoader(fsys))
	unit := models.CandidateUnit{Name: "users", ManifestPath: "users/Cargo.toml", EntryPointPath: "users/src/main.rs"}

	graph, err := r.Resolve(context.Background(), unit)
	require.NoError(t, err)
	assert.Equal(t, "users", graph.Package)
	assert.True(t, graph.HasTargetKind(models.TargetKindBin))
	assert.Equal(t, "users/src/main.rs", graph.Targets[0].SrcPath)
	assert.True(t, graph.HasDependency("lambda_runtime"))
	assert.False(t, graph.HasDependency("runtime"))
}

func TestManifestResolverErrors(t *testing.T) {
	r := NewManifestResolver(manifest.NewLoader(fstest.MapFS{}))
	_, err := r.Resolve(context.Background(), models.CandidateUnit{Name: "gone", ManifestPath: "gone/Cargo.toml"})
	require.Error(t, err)
	assert.Equal(t, errors.ResolutionErrorCode, errors.CodeOf(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Resolve(ctx, models.CandidateUnit{Name: "gone", ManifestPath: "gone/Cargo.toml"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	loader := manifest.NewLoader(fstest.MapFS{})

	r, err := New("", Options{Manifests: loader})
	require.NoError(t, err)
	assert.Equal(t, ManifestResolverName, r.Name())

	r, err = New(CargoResolverName, Options{Root: "/ws", CargoPath: "/usr/bin/cargo"})
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/cargo", r.(*CargoResolver).CargoPath)

	_, err = New(ManifestResolverName, Options{})
	assert.Error(t, err)

	_, err = New("bazel", Options{})
	assert.ErrorContains(t, err, `unknown resolver "bazel"`)
	assert.Equal(t, []string{"manifest", "cargo"}, Names())
}
