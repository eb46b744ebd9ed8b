package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 100 * time.Millisecond

var errAlreadyWatching = errors.New("already watching")

// Watcher re-runs a callback for source files changed under a set of
// directories. Bursts of events for the same file are coalesced.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dirs     []string
	match    func(path string) bool
	onChange func(ctx context.Context, path string)
	logger   *zap.Logger
	debounce time.Duration
	running  bool
}

// NewWatcher watches dirs recursively. match selects the files of interest
// and skips directories it rejects.
func NewWatcher(dirs []string, match func(path string) bool, onChange func(context.Context, string), logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher:  fw,
		dirs:     dirs,
		match:    match,
		onChange: onChange,
		logger:   logger,
		debounce: defaultDebounce,
	}, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && !w.match(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Run blocks until ctx is done, calling onChange for every matching file
// written or created. It closes the watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	if w.running {
		return errAlreadyWatching
	}
	w.running = true
	defer w.watcher.Close()

	for _, dir := range w.dirs {
		if err := w.addTree(dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	pending := make(map[string]struct{})
	var flush <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				pending[event.Name] = struct{}{}
				flush = time.After(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch", zap.Error(err))
		case <-flush:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			flush = nil
			for _, p := range paths {
				w.onChange(ctx, p)
			}
		}
	}
}

// handleEvent reports whether event changed a file of interest. New
// directories are added to the watch list.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && w.match(event.Name) {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
		}
		return false
	}
	return w.match(event.Name)
}
