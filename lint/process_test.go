package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/plint/internal"
	tt "github.com/gnolang/plint/internal/types"
)

// TestProcessPathsContextCancellation tests that context cancellation is handled properly
func TestProcessPathsContextCancellation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	for i := 0; i < 10; i++ {
		filename := filepath.Join(tempDir, fmt.Sprintf("test%d.py", i))
		require.NoError(t, os.WriteFile(filename, []byte("import os\n"), 0o644))
	}

	l, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	ctx, cancel := context.WithCancel(context.Background())

	// cancel once the third file has been processed
	processed := 0
	processor := func(ctx context.Context, engine LintEngine, path string, set tt.RuleSet) *internal.FileResult {
		processed++
		if processed == 3 {
			cancel()
		}
		return ProcessFile(ctx, engine, path, set)
	}

	report, err := ProcessPaths(ctx, nil, l.Engine, l.Settings, l.Scanner([]string{tempDir}), processor, ProcessOptions{Workers: 1})

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	require.Len(t, report.Files, 3)
	assert.Equal(t, 3, processed)

	// the file running when the run was cancelled is still fully checked
	for _, f := range report.Files {
		require.Len(t, f.Issues, 1, f.Filename)
		assert.Equal(t, "F401", f.Issues[0].Rule)
	}
}

// TestProcessPathsOrdering tests that results are merged in path order
func TestProcessPathsOrdering(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	for i := 0; i < 5; i++ {
		filename := filepath.Join(tempDir, fmt.Sprintf("test%d.py", i))
		content := ""
		for j := 0; j <= i; j++ {
			content += fmt.Sprintf("import mod%d\n", j)
		}
		require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	}

	l, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	report, err := ProcessPaths(context.Background(), nil, l.Engine, l.Settings, l.Scanner([]string{tempDir}), ProcessFile, ProcessOptions{})
	require.NoError(t, err)
	require.Len(t, report.Files, 5)

	for i, f := range report.Files {
		assert.Equal(t, filepath.Join(tempDir, fmt.Sprintf("test%d.py", i)), f.Filename)
		assert.Len(t, f.Issues, i+1)
	}

	issues := report.Issues()
	assert.Len(t, issues, 15)
	for i := 1; i < len(issues); i++ {
		prev, cur := issues[i-1], issues[i]
		ordered := prev.Filename < cur.Filename ||
			(prev.Filename == cur.Filename && prev.Range.Start <= cur.Range.Start)
		assert.True(t, ordered, "issues out of order at %d", i)
	}
}

func TestProcessPathsMissingRoot(t *testing.T) {
	t.Parallel()

	l, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	_, err = ProcessPaths(context.Background(), nil, l.Engine, l.Settings,
		l.Scanner([]string{filepath.Join(t.TempDir(), "missing")}), ProcessFile, ProcessOptions{})
	assert.Error(t, err)
}
