package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectScanner(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	files := map[string]string{
		"file1.py":             "import os",
		"stubs/file2.pyi":      "def f() -> int: ...",
		"file3.txt":            "This is a text file",
		"subdir/file4.py":      "x = 1",
		".venv/lib/file5.py":   "y = 2",
		"subdir/build/gen.py":  "z = 3",
		"subdir/README.md":     "docs",
		"subdir/nested/six.py": "",
	}

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}

	skip := func(path string) bool {
		base := filepath.Base(path)
		return strings.HasPrefix(base, ".") || base == "build"
	}

	scanned, err := New([]string{tempDir}, skip).Scan()
	require.NoError(t, err)

	var paths []string
	for _, file := range scanned {
		rel, err := filepath.Rel(tempDir, file.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"file1.py", "stubs/file2.pyi", "subdir/file4.py", "subdir/nested/six.py"}, paths)
	assert.Greater(t, scanned[0].Size, int64(0), "File size should be greater than 0")
}

func TestScannerExplicitFiles(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	py := filepath.Join(tempDir, "a.py")
	txt := filepath.Join(tempDir, "b.txt")
	require.NoError(t, os.WriteFile(py, []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))

	skipAll := func(string) bool { return true }
	scanned, err := New([]string{py, txt, py, tempDir}, skipAll).Scan()
	require.NoError(t, err)
	require.Len(t, scanned, 1)
	assert.Equal(t, py, scanned[0].Path)

	_, err = New([]string{filepath.Join(tempDir, "missing.py")}, nil).Scan()
	assert.Error(t, err)
}

func TestScannerMatch(t *testing.T) {
	t.Parallel()

	s := New(nil, func(path string) bool { return strings.Contains(path, "migrations") })
	assert.True(t, s.Match("app/models.py"))
	assert.True(t, s.Match("app/models.pyi"))
	assert.False(t, s.Match("app/migrations/0001.py"))
	assert.False(t, s.Match("app/models.go"))
}
