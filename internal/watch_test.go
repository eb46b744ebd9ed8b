package internal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsChangedFiles(t *testing.T) {
	t.Parallel()

	dir := createTempDir(t, "watch_test")
	match := func(path string) bool {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			return !strings.HasPrefix(filepath.Base(path), ".")
		}
		return strings.HasSuffix(path, ".py")
	}

	var (
		mu      sync.Mutex
		changed []string
	)
	w, err := NewWatcher([]string{dir}, match, func(_ context.Context, path string) {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, path)
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	py := filepath.Join(dir, "a.py")
	txt := filepath.Join(dir, "notes.txt")
	require.Eventually(t, func() bool {
		// the watcher may not be registered yet; keep writing until seen
		_ = os.WriteFile(py, []byte("import os\n"), 0o644)
		_ = os.WriteFile(txt, []byte("x"), 0o644)
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	for _, p := range changed {
		assert.Equal(t, py, p)
	}
}

func TestWatcherRunsOnce(t *testing.T) {
	t.Parallel()

	w, err := NewWatcher(nil, func(string) bool { return true }, func(context.Context, string) {}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.watcher.Close() })
	w.running = true
	assert.ErrorIs(t, w.Run(context.Background()), errAlreadyWatching)
}
