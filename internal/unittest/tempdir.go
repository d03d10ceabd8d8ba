package unittest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDir is a scratch directory owned by a single test.
type TempDir struct {
	t    *testing.T
	path string
}

// NewTempDir creates a temporary directory that is removed when the test ends.
// Stores opened inside it must be closed by earlier cleanups, which run first.
func NewTempDir(t *testing.T) *TempDir {
	t.Helper()
	path, err := os.MkdirTemp("", "go-eth-bridge-*")
	require.NoError(t, err, "failed to create temp dir")

	td := &TempDir{t: t, path: path}
	t.Cleanup(td.remove)
	return td
}

// Path returns the path of the temporary directory.
func (td *TempDir) Path() string {
	return td.path
}

// Join returns a path inside the temporary directory.
func (td *TempDir) Join(elem ...string) string {
	return filepath.Join(append([]string{td.path}, elem...)...)
}

// WriteFile writes data to name inside the directory and returns the full path.
func (td *TempDir) WriteFile(name string, data []byte) string {
	td.t.Helper()
	p := td.Join(name)
	require.NoError(td.t, os.WriteFile(p, data, 0600), "failed to write "+p)
	return p
}

func (td *TempDir) remove() {
	require.NoError(td.t, os.RemoveAll(td.path), "failed to remove temp dir: "+td.path)
}
