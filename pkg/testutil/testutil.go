package testutil

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FileTree represents a directory structure for testing. Values are
// string or []byte file contents, File for a file with a mode, or a
// nested FileTree for a directory.
type FileTree map[string]interface{}

// File is a file entry with explicit permissions
type File struct {
	Content []byte
	Mode    os.FileMode
}

// CreateFileTree writes tree below basePath
func CreateFileTree(t *testing.T, fs afero.Fs, basePath string, tree FileTree) {
	t.Helper()

	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fullPath := filepath.Join(basePath, name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(fullPath), 0755))

		switch v := tree[name].(type) {
		case string:
			require.NoError(t, afero.WriteFile(fs, fullPath, []byte(v), 0644), fullPath)
		case []byte:
			require.NoError(t, afero.WriteFile(fs, fullPath, v, 0644), fullPath)
		case File:
			require.NoError(t, afero.WriteFile(fs, fullPath, v.Content, 0644), fullPath)
			require.NoError(t, fs.Chmod(fullPath, v.Mode), fullPath)
		case FileTree:
			require.NoError(t, fs.MkdirAll(fullPath, 0755), fullPath)
			CreateFileTree(t, fs, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, v)
		}
	}
}

// IsolateEnv points the instkit config and state directories at fresh temp
// directories so tests never read the user's config or write to their log
func IsolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INSTKIT_CONFIG_DIR", t.TempDir())
	t.Setenv("INSTKIT_STATE_DIR", t.TempDir())
}

// RandomBytes returns n reproducible bytes that do not compress
func RandomBytes(n int, seed int64) []byte {
	data := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(data)
	return data
}

// AssertFileContent checks that path exists in fs with the given content
func AssertFileContent(t *testing.T, fs afero.Fs, path string, want []byte) {
	t.Helper()
	got, err := afero.ReadFile(fs, path)
	if assert.NoError(t, err, path) {
		assert.Equal(t, want, got, path)
	}
}

// AssertExists checks whether path exists in fs
func AssertExists(t *testing.T, fs afero.Fs, path string, want bool) {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err, path)
	assert.Equal(t, want, ok, path)
}
