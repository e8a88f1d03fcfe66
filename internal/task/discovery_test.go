package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// realPath resolves symlinks so that tests work on macOS where /var is a
// symlink to /private/var.
func realPath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

// chdirTemp changes the working directory to dir for the duration of the test,
// then restores the original.
func chdirTemp(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(realPath(t, dir)))
	t.Cleanup(func() {
		_ = os.Chdir(orig)
	})
}

// writeFile writes content at path, creating intermediate directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverTaskFile_ExplicitFlag(t *testing.T) {
	tmp := realPath(t, t.TempDir())
	path := filepath.Join(tmp, "mine.json")
	writeFile(t, path, "{}")

	got, err := DiscoverTaskFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = DiscoverTaskFile(filepath.Join(tmp, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task file not found")
}

func TestDiscoverTaskFile_WellKnownPriority(t *testing.T) {
	tmp := realPath(t, t.TempDir())
	writeFile(t, filepath.Join(tmp, "tasks", "task.json"), "{}")
	writeFile(t, filepath.Join(tmp, "task.json"), "{}")
	chdirTemp(t, tmp)

	got, err := DiscoverTaskFile("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "task.json"), got)
}

func TestDiscoverTaskFile_Subdirectory(t *testing.T) {
	tmp := realPath(t, t.TempDir())
	writeFile(t, filepath.Join(tmp, "tasks", "0002", "task.json"), "{}")
	writeFile(t, filepath.Join(tmp, "tasks", "0001", "task.json"), "{}")
	chdirTemp(t, tmp)

	got, err := DiscoverTaskFile("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "tasks", "0001", "task.json"), got)
}

func TestDiscoverTaskFile_NotFound(t *testing.T) {
	chdirTemp(t, t.TempDir())
	_, err := DiscoverTaskFile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no task file found")
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hashBytes([]byte("hello")))
}
