// Package watch keeps the index in step with a directory tree by turning
// fsnotify events into single-file scans.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

// Action is what the watcher does for one event.
type Action int

// Actions.
const (
	ActionNone Action = iota
	// ActionScan rescans a created or written file.
	ActionScan
	// ActionRemove rescans a vanished path, which drops its record.
	ActionRemove
	// ActionWatchDir starts watching a new directory and scans its contents.
	ActionWatchDir
)

// String returns the string representation.
func (a Action) String() string {
	switch a {
	case ActionScan:
		return "scan"
	case ActionRemove:
		return "remove"
	case ActionWatchDir:
		return "watch-dir"
	default:
		return "none"
	}
}

// thumbnailsDir is the one hidden directory that is always watched.
const thumbnailsDir = ".thumbnails"

// Watcher drives a ScanService from filesystem events under one root.
type Watcher struct {
	scanner    driving.ScanService
	root       string
	skipHidden bool
	fsw        *fsnotify.Watcher
}

// New creates a watcher on root and every directory below it.
func New(scanner driving.ScanService, root string, skipHidden bool) (*Watcher, error) {
	if scanner == nil {
		return nil, errors.New("watch: scanner is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		scanner:    scanner,
		root:       filepath.Clean(root),
		skipHidden: skipHidden,
		fsw:        fsw,
	}
	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("watch: watching %s", w.root)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.dispatch(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// WatchList returns the watched directories.
func (w *Watcher) WatchList() []string {
	return w.fsw.WatchList()
}

func (w *Watcher) dispatch(ctx context.Context, event fsnotify.Event) {
	action := w.handleFsEvent(event)
	if action == ActionNone {
		return
	}

	var err error
	switch action {
	case ActionScan, ActionRemove:
		_, err = w.scanner.ScanFile(ctx, event.Name)
	case ActionWatchDir:
		if err = w.addTree(event.Name); err == nil {
			_, err = w.scanner.ScanDirectory(ctx, event.Name)
		}
	}
	if err != nil {
		logger.Warn("watch: %s %s: %v", action, event.Name, err)
		return
	}
	logger.Debug("watch: %s %s", action, event.Name)
}

// handleFsEvent maps an event to an action. Chmod-only events are ignored.
func (w *Watcher) handleFsEvent(event fsnotify.Event) Action {
	if w.hidden(event.Name) {
		return ActionNone
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return ActionRemove
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			// Gone again before we looked.
			return ActionRemove
		}
		if info.IsDir() {
			if event.Has(fsnotify.Create) {
				return ActionWatchDir
			}
			return ActionNone
		}
		if !info.Mode().IsRegular() {
			return ActionNone
		}
		return ActionScan
	default:
		return ActionNone
	}
}

// hidden reports whether any element of path below the root is hidden.
func (w *Watcher) hidden(path string) bool {
	if !w.skipHidden {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != thumbnailsDir && part != ".." {
			return true
		}
	}
	return false
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.hidden(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
