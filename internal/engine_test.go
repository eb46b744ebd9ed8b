package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/plint/internal/fixer"
	tt "github.com/gnolang/plint/internal/types"
)

// createTempDir creates a temporary directory and returns its path.
// It also registers a cleanup function to remove the directory after the test.
func createTempDir(t testing.TB, prefix string) string {
	tempDir, err := os.MkdirTemp("", prefix)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })
	return tempDir
}

func writeFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func ruleSet(e *Engine, codes ...string) tt.RuleSet {
	return e.Registry().RuleSet(codes, nil, nil)
}

func rules(issues []tt.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Rule)
	}
	return out
}

func TestEngineRun(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	dir := createTempDir(t, "engine_test")
	path := writeFile(t, dir, "a.py", "import os\n")

	res := engine.Run(context.Background(), path, ruleSet(engine, "F401"))
	require.Len(t, res.Issues, 1)
	issue := res.Issues[0]
	assert.Equal(t, "F401", issue.Rule)
	assert.Equal(t, path, issue.Filename)
	assert.Equal(t, 1, issue.Start.Line)
	assert.Equal(t, 8, issue.Start.Column)
	assert.Equal(t, tt.FixableSafe, issue.Fixability())
	assert.False(t, res.Changed())
}

func TestEngineSuppression(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	ctx := context.Background()

	res := engine.Lint(ctx, "a.py", []byte("import os  # noqa: F401\n"), ruleSet(engine, "F401", "RUF100"))
	assert.Empty(t, res.Issues)

	res = engine.Lint(ctx, "a.py", []byte("import os  # noqa: unused-import\n"), ruleSet(engine, "F401", "RUF100"))
	assert.Empty(t, res.Issues)

	res = engine.Lint(ctx, "a.py", []byte("import os  # noqa\n"), ruleSet(engine, "F401", "RUF100"))
	assert.Empty(t, res.Issues)

	src := []byte("import sys  # noqa: F401\nsys.exit()\n")
	res = engine.Lint(ctx, "a.py", src, ruleSet(engine, "F401", "RUF100"))
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "RUF100", res.Issues[0].Rule)
	assert.Equal(t, "unused `noqa` directive (unused: `F401`)", res.Issues[0].Message)

	fixed := engine.Fix(ctx, "a.py", src, ruleSet(engine, "F401", "RUF100"), fixer.Options{Mode: tt.FixSafe})
	assert.Equal(t, "import sys\nsys.exit()\n", string(fixed.Source))
	assert.Empty(t, fixed.Issues)

	res = engine.Lint(ctx, "a.py", []byte("import os  # noqa:\n"), ruleSet(engine, "F401", "RUF102"))
	assert.Contains(t, rules(res.Issues), "RUF102")
}

func TestEngineSyntaxError(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	src := []byte("import os\ndef f(:\n    pass\n")
	res := engine.Lint(context.Background(), "bad.py", src, ruleSet(engine, "F401", "E999"))
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "E999", res.Issues[0].Rule)
	assert.Equal(t, "bad.py", res.Issues[0].Start.Filename)

	fixed := engine.Fix(context.Background(), "bad.py", src, ruleSet(engine, "F401", "E999"), fixer.Options{Mode: tt.FixAll})
	assert.Equal(t, src, fixed.Source)
	assert.Equal(t, []string{"E999"}, rules(fixed.Issues))
}

func TestEngineIOError(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	missing := filepath.Join(createTempDir(t, "engine_io"), "missing.py")
	res := engine.Run(context.Background(), missing, ruleSet(engine))
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "E902", res.Issues[0].Rule)
	assert.Equal(t, missing, res.Issues[0].Filename)

	res = engine.Run(context.Background(), missing, ruleSet(engine, "F"))
	assert.Empty(t, res.Issues)
}

func TestEngineFix(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	dir := createTempDir(t, "engine_fix")
	path := writeFile(t, dir, "a.py", "import os\nimport sys\n\n\ndef f(x=[]):\n    y = 1\n    return x\n")

	safe := engine.RunFix(context.Background(), path, ruleSet(engine, "F401", "F841", "B006"), fixer.Options{Mode: tt.FixSafe})
	assert.Equal(t, "\n\ndef f(x=[]):\n    y = 1\n    return x\n", string(safe.Source))
	assert.Len(t, safe.Fixed, 2)
	assert.Equal(t, []string{"B006", "F841"}, rules(safe.Issues))
	assert.Equal(t, 0, safe.Fixable(tt.FixSafe))
	assert.Equal(t, 2, safe.Fixable(tt.FixAll))

	all := engine.RunFix(context.Background(), path, ruleSet(engine, "F401", "F841", "B006"), fixer.Options{Mode: tt.FixAll})
	assert.Equal(t, "\n\ndef f(x=None):\n    if x is None:\n        x = []\n    return x\n", string(all.Source))
	assert.Empty(t, all.Issues)

	// the file itself is never written by the engine
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, safe.Original, content)
}

func TestEngineFixedPointNotReached(t *testing.T) {
	t.Parallel()

	engine := NewEngine(WithMaxIterations(1))
	src := []byte("def f():\n    import os\n    import sys\n")
	res := engine.Fix(context.Background(), "a.py", src, ruleSet(engine, "F401"), fixer.Options{Mode: tt.FixSafe})
	assert.True(t, res.FixedPointNotReached)
	assert.Equal(t, "def f():\n    import sys\n", string(res.Source))
	assert.Equal(t, 1, res.Iterations)
	assert.Len(t, res.Issues, 1)

	res = NewEngine().Fix(context.Background(), "a.py", src, ruleSet(engine, "F401"), fixer.Options{Mode: tt.FixSafe})
	assert.False(t, res.FixedPointNotReached)
	assert.Equal(t, "def f():\n    pass\n", string(res.Source))
}

func TestEngineCache(t *testing.T) {
	t.Parallel()

	cache, err := NewCache(createTempDir(t, "engine_cache"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	engine := NewEngine(WithCache(cache))
	set := ruleSet(engine, "F401")
	src := []byte("import os\n")

	first := engine.Lint(context.Background(), "a.py", src, set)
	assert.False(t, first.Cached)
	second := engine.Lint(context.Background(), "a.py", src, set)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Issues, second.Issues)

	third := engine.Lint(context.Background(), "a.py", []byte("import os\nos\n"), set)
	assert.False(t, third.Cached)
	assert.Empty(t, third.Issues)
}

func TestEngineCompletesStartedPass(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := NewEngine()
	set := ruleSet(engine, "F401")

	res := engine.Lint(ctx, "a.py", []byte("import os\n"), set)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "F401", res.Issues[0].Rule)

	fixed := engine.Fix(ctx, "a.py", []byte("import os\n"), set, fixer.Options{Mode: tt.FixSafe})
	assert.True(t, fixed.Changed())
	assert.Empty(t, fixed.Issues)
	assert.Equal(t, "", string(fixed.Source))
}

func TestEngineRunDropsCacheOfRemovedFile(t *testing.T) {
	t.Parallel()

	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	engine := NewEngine(WithCache(cache))
	set := ruleSet(engine, "F401", "E902")
	path := writeFile(t, t.TempDir(), "gone.py", "import os\n")

	res := engine.Run(context.Background(), path, set)
	require.Len(t, res.Issues, 1)
	n, err := cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, os.Remove(path))
	res = engine.Run(context.Background(), path, set)
	assert.Equal(t, []string{"E902"}, rules(res.Issues))
	n, err = cache.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}
