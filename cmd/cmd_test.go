package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/plint/lint"
)

func init() {
	color.NoColor = true
}

func setupProject(t *testing.T, files map[string]string) (dir, cfg string) {
	t.Helper()
	dir = t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	cfg = filepath.Join(dir, lint.DefaultConfigName)
	if _, ok := files[lint.DefaultConfigName]; !ok {
		require.NoError(t, os.WriteFile(cfg, []byte("select: [F401, F841]\n"), 0o644))
	}
	return dir, cfg
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestLintCommand(t *testing.T) {
	t.Parallel()

	dir, cfg := setupProject(t, map[string]string{
		"a.py":     "import os\n",
		"b.py":     "import sys\nsys.exit()\n",
		"skip.txt": "import os\n",
	})
	a := filepath.Join(dir, "a.py")

	out, err := run(t, "lint", "--config", cfg, "--no-progress", "--format", "concise", dir)
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Equal(t, a+":1:8: F401 [*] `os` imported but unused\n", out)

	// the root command behaves like lint
	out, err = run(t, "--config", cfg, "--no-progress", "--format", "concise", dir)
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, out, "F401")

	out, err = run(t, "lint", "--config", cfg, "--no-progress", dir)
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, out, " --> "+a+":1:8")
	assert.Contains(t, out, "Found 1 error.\n[*] 1 fixable with the `fix` command.\n")

	out, err = run(t, "lint", "--config", cfg, "--no-progress", "--ignore", "F401", dir)
	assert.NoError(t, err)
	assert.Contains(t, out, "All checks passed!")
}

func TestLintCommandErrors(t *testing.T) {
	t.Parallel()

	dir, cfg := setupProject(t, map[string]string{"a.py": "x = 1\n"})

	_, err := run(t, "lint", "--config", cfg, "--format", "xml", dir)
	assert.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))

	_, err = run(t, "lint", "--config", filepath.Join(dir, "missing.yaml"), dir)
	assert.Equal(t, 2, ExitCode(err))

	_, err = run(t, "lint", "--config", cfg, filepath.Join(dir, "missing"))
	assert.Equal(t, 2, ExitCode(err))
}

func TestFixCommand(t *testing.T) {
	t.Parallel()

	src := "import os\n\n\ndef f():\n    x = 1\n    return 2\n"
	dir, cfg := setupProject(t, map[string]string{"a.py": src})
	a := filepath.Join(dir, "a.py")

	t.Run("diff", func(t *testing.T) {
		out, err := run(t, "fix", "--config", cfg, "--no-progress", "--diff", dir)
		assert.ErrorIs(t, err, ErrIssuesFound)
		assert.Contains(t, out, "-import os\n")
		assert.Equal(t, src, readFile(t, a))
	})

	t.Run("dry run", func(t *testing.T) {
		out, err := run(t, "fix", "--config", cfg, "--no-progress", "--dry-run", dir)
		assert.ErrorIs(t, err, ErrIssuesFound)
		assert.Contains(t, out, "Would fix 1 issue in "+a)
		assert.Equal(t, src, readFile(t, a))
	})
}

func TestFixCommandWrites(t *testing.T) {
	t.Parallel()

	src := "import os\n\n\ndef f():\n    x = 1\n    return 2\n"
	dir, cfg := setupProject(t, map[string]string{"a.py": src})
	a := filepath.Join(dir, "a.py")

	out, err := run(t, "fix", "--config", cfg, "--no-progress", dir)
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, out, "Found 2 errors (1 fixed, 1 remaining).")
	assert.Equal(t, "\n\ndef f():\n    x = 1\n    return 2\n", readFile(t, a))

	out, err = run(t, "fix", "--config", cfg, "--no-progress", "--unsafe", dir)
	assert.NoError(t, err)
	assert.Contains(t, out, "Found 1 error (1 fixed, 0 remaining).")
	assert.Equal(t, "\n\ndef f():\n    return 2\n", readFile(t, a))

	info, err := os.Stat(a)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestInitCommand(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plint.yaml")
	out, err := run(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	config, err := lint.LoadConfig(path)
	require.NoError(t, err)
	assert.Contains(t, config.Rules, "F401")
	assert.NotContains(t, config.Rules, "B006")

	_, err = run(t, "init", "--config", path)
	assert.Error(t, err)

	_, err = run(t, "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestRulesCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "F401")
	assert.NotContains(t, out, "B006")

	out, err = run(t, "rules", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "B006")

	out, err = run(t, "rules", "unused-import")
	require.NoError(t, err)
	assert.Contains(t, out, "unused-import (F401)")
	assert.Contains(t, out, "category: pyflakes")

	out, err = run(t, "rules", "F40")
	require.NoError(t, err)
	assert.Contains(t, out, "(F403)")
	assert.Contains(t, out, "(F405)")

	_, err = run(t, "rules", "nope")
	assert.Error(t, err)
}

func TestCleanCommand(t *testing.T) {
	t.Parallel()

	dir, cfg := setupProject(t, map[string]string{"a.py": "import os\n"})
	cacheDir := filepath.Join(t.TempDir(), "cache")

	out, err := run(t, "clean", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "No cache configured.")

	_, err = run(t, "lint", "--config", cfg, "--no-progress", "--cache-dir", cacheDir, dir)
	assert.ErrorIs(t, err, ErrIssuesFound)

	out, err = run(t, "clean", "--config", cfg, "--cache-dir", cacheDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 cached result.")

	out, err = run(t, "clean", "--config", cfg, "--cache-dir", cacheDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 cached results.")
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(ErrIssuesFound))
	assert.Equal(t, 2, ExitCode(errors.New("boom")))
}
