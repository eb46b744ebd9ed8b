package lint

import (
	"context"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/plint/internal"
	"github.com/gnolang/plint/internal/fixer"
	tt "github.com/gnolang/plint/internal/types"
)

type mockLintEngine struct {
	mock.Mock
}

func (m *mockLintEngine) Run(ctx context.Context, filename string, set tt.RuleSet) *internal.FileResult {
	args := m.Called(ctx, filename, set)
	return args.Get(0).(*internal.FileResult)
}

func (m *mockLintEngine) RunFix(ctx context.Context, filename string, set tt.RuleSet, opts fixer.Options) *internal.FileResult {
	args := m.Called(ctx, filename, set, opts)
	return args.Get(0).(*internal.FileResult)
}

func testIssue(filename string) tt.Issue {
	return tt.Issue{
		Rule:     "F401",
		Filename: filename,
		Start:    token.Position{Filename: filename, Offset: 7, Line: 1, Column: 8},
		End:      token.Position{Filename: filename, Offset: 9, Line: 1, Column: 10},
		Message:  "`os` imported but unused",
	}
}

func TestProcessFile(t *testing.T) {
	t.Parallel()

	set := tt.RuleSet{"F401": {Severity: tt.SeverityError}}
	expected := &internal.FileResult{Filename: "test.py", Issues: []tt.Issue{testIssue("test.py")}}
	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", mock.Anything, "test.py", set).Return(expected)

	res := ProcessFile(context.Background(), mockEngine, "test.py", set)

	assert.Equal(t, expected, res)
	mockEngine.AssertExpectations(t)
}

func TestFixFile(t *testing.T) {
	t.Parallel()

	set := tt.RuleSet{"F401": {Severity: tt.SeverityError}}
	opts := fixer.Options{Mode: tt.FixAll, Preference: tt.PreferUnsafe}
	expected := &internal.FileResult{Filename: "test.py", Source: []byte("")}
	mockEngine := new(mockLintEngine)
	mockEngine.On("RunFix", mock.Anything, "test.py", set, opts).Return(expected)

	res := FixFile(opts)(context.Background(), mockEngine, "test.py", set)

	assert.Equal(t, expected, res)
	mockEngine.AssertExpectations(t)
	mockEngine.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPathsUsesPerFileRuleSet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"app.py", "tests/test_app.py", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("import os\n"), 0o644))
	}

	config := DefaultConfig()
	config.Select = []string{"F401", "F841"}
	config.PerFileIgnores = map[string][]string{"tests/*.py": {"F841"}}
	l, err := New(config, nil)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	app := filepath.Join(dir, "app.py")
	test := filepath.Join(dir, "tests", "test_app.py")
	full := tt.RuleSet{"F401": {Severity: tt.SeverityWarning}, "F841": {Severity: tt.SeverityWarning}}
	reduced := tt.RuleSet{"F401": {Severity: tt.SeverityWarning}}

	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", mock.Anything, app, full).
		Return(&internal.FileResult{Filename: app, Issues: []tt.Issue{testIssue(app)}})
	mockEngine.On("Run", mock.Anything, test, reduced).
		Return(&internal.FileResult{Filename: test, Issues: []tt.Issue{testIssue(test)}})

	report, err := ProcessPaths(context.Background(), nil, mockEngine, l.Settings, l.Scanner([]string{dir}), ProcessFile, ProcessOptions{})
	require.NoError(t, err)
	require.Len(t, report.Files, 2)
	assert.Equal(t, app, report.Files[0].Filename)
	assert.Equal(t, test, report.Files[1].Filename)
	assert.Len(t, report.Issues(), 2)
	mockEngine.AssertExpectations(t)
}

func TestProcessPathsWithEngine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"a.py":             "import os\n",
		"b.py":             "import sys\nsys.exit()\n",
		"c.py":             "def f(:\n",
		"build/skipped.py": "import os\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	l, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	report, err := ProcessPaths(context.Background(), nil, l.Engine, l.Settings, l.Scanner([]string{dir}), ProcessFile, ProcessOptions{Workers: 2})
	require.NoError(t, err)
	require.Len(t, report.Files, 3)

	issues := report.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "F401", issues[0].Rule)
	assert.Equal(t, filepath.Join(dir, "a.py"), issues[0].Filename)
	assert.Equal(t, "E999", issues[1].Rule)
	assert.Equal(t, 1, report.Fixable(tt.FixSafe))

	opts, err := l.Settings.FixOptions(tt.FixSafe)
	require.NoError(t, err)
	fixed, err := ProcessPaths(context.Background(), nil, l.Engine, l.Settings, l.Scanner([]string{dir}), FixFile(opts), ProcessOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, fixed.Fixed())
	assert.Equal(t, "", string(fixed.Files[0].Source))

	// fixing happens in memory only
	content, err := os.ReadFile(filepath.Join(dir, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "import os\n", string(content))
}

func TestNewRejectsBadGlob(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	config.Exclude = []string{"[unterminated"}
	_, err := New(config, nil)
	assert.Error(t, err)
}
