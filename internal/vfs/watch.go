package vfs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"vfsemu/internal/source"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable indicates a source that has no local file to watch
var ErrNotWatchable = errors.New("source cannot be watched")

// WatchDebounce is how long the watcher waits for writes to settle before
// reloading.
const WatchDebounce = 200 * time.Millisecond

// Watch reloads the session whenever the local file at path is written or
// recreated. A reload that fails keeps the current tree. Watch blocks until
// ctx is done.
func Watch(ctx context.Context, s *Session, opener source.Opener, path string) error {
	if path == "" || source.IsRemote(path) {
		return &Error{Op: OpWatch, Path: path, Err: ErrNotWatchable}
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return &Error{Op: OpWatch, Path: path, Err: err}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &Error{Op: OpWatch, Path: path, Err: err}
	}
	defer watcher.Close()

	// watch the directory so editors that replace the file are seen too
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return &Error{Op: OpWatch, Path: path, Err: fmt.Errorf("watch %s: %w", filepath.Dir(target), err)}
	}
	sessionLogger.Info("Watching %s for changes", target)

	debounced := debounce.New(WatchDebounce)
	reload := func() {
		reloadSession(ctx, s, opener, path)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				sessionLogger.Debug("Change detected: %s", event)
				debounced(reload)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			sessionLogger.Warn("Watcher error: %v", err)
		}
	}
}

// reloadSession loads path and swaps it into s. It does nothing once ctx is
// done, since a debounced reload can fire after Watch has returned.
func reloadSession(ctx context.Context, s *Session, opener source.Opener, path string) bool {
	if ctx.Err() != nil {
		sessionLogger.Debug("Skipping reload of %s after shutdown", path)
		return false
	}
	tree, report, err := Load(ctx, opener, path)
	if err != nil {
		sessionLogger.Warn("Reload of %s failed, keeping the current tree: %v", path, err)
		return false
	}
	s.Reload(tree)
	sessionLogger.Info("Reloaded %s (%d directories, %d files)", path, report.Directories, report.Files)
	return true
}
