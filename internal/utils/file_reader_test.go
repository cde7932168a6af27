package utils

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReaderCaching(t *testing.T) {
	fsys := fstest.MapFS{
		"svc/src/main.rs": {Data: []byte("fn main() {}")},
	}
	reader := NewFileReader(fsys)

	first, err := reader.ReadFile("svc/src/main.rs")
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}", string(first))

	// a cached read does not see later changes
	fsys["svc/src/main.rs"] = &fstest.MapFile{Data: []byte("changed")}
	second, err := reader.ReadFile("./svc/src/../src/main.rs")
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}", string(second))

	reader.ClearCache()
	third, err := reader.ReadFile("svc/src/main.rs")
	require.NoError(t, err)
	assert.Equal(t, "changed", string(third))
}

func TestFileReaderErrors(t *testing.T) {
	reader := NewFileReader(fstest.MapFS{})

	_, err := reader.ReadFile("")
	assert.ErrorIs(t, err, fs.ErrInvalid)

	_, err = reader.ReadFile("../outside.rs")
	assert.ErrorIs(t, err, fs.ErrInvalid)

	_, err = reader.ReadFile("missing.rs")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to read missing.rs")
}
