package utils

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workspaceFS() fstest.MapFS {
	return fstest.MapFS{
		"Cargo.toml":                         {Data: []byte("")},
		"services/a/Cargo.toml":              {Data: []byte("")},
		"services/a/src/main.rs":             {Data: []byte("")},
		"services/a/target/debug/Cargo.toml": {Data: []byte("")},
		"node_modules/pkg/Cargo.toml":        {Data: []byte("")},
		".git/Cargo.toml":                    {Data: []byte("")},
		".hidden/Cargo.toml":                 {Data: []byte("")},
		"vendor/dep/Cargo.toml":              {Data: []byte("")},
		"services/b/Cargo.toml":              {Data: []byte("")},
	}
}

func TestWalkFilesAppliesFilters(t *testing.T) {
	fp := NewFileProcessor(workspaceFS())

	files, err := fp.WalkFiles(".", FileWalkOptions{
		FileFilter:      FileNameFilter("Cargo.toml"),
		DirectoryFilter: DefaultDirectoryFilter(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Cargo.toml",
		"services/a/Cargo.toml",
		"services/b/Cargo.toml",
	}, files)
}

func TestWalkStopsEarly(t *testing.T) {
	fp := NewFileProcessor(workspaceFS())

	var seen []string
	err := fp.Walk(".", FileWalkOptions{
		FileFilter:      FileNameFilter("Cargo.toml"),
		DirectoryFilter: DefaultDirectoryFilter(),
	}, func(path string) bool {
		seen = append(seen, path)
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cargo.toml"}, seen)
}

func TestWalkMissingRoot(t *testing.T) {
	fp := NewFileProcessor(workspaceFS())
	_, err := fp.WalkFiles("does-not-exist", FileWalkOptions{SkipErrors: true})
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	fp := NewFileProcessor(workspaceFS())
	assert.True(t, fp.Exists("services/a/src/main.rs"))
	assert.False(t, fp.Exists("services/b/src/main.rs"))
	assert.False(t, fp.Exists("services/a"))
}
