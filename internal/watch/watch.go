// Package watch re-runs a callback when files below a directory change.
// Template authors use it through "scaffold preview --watch".
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before calling back.
const DefaultDebounce = 300 * time.Millisecond

// DefaultIgnore lists paths (relative, slash separated) whose changes are
// ignored: VCS metadata and editor scratch files.
var DefaultIgnore = []string{
	".git",
	".git/**",
	"**/*~",
	"**/.*.swp",
	"**/.#*",
}

// Watcher watches a directory tree.
type Watcher struct {
	root     string
	debounce time.Duration
	ignore   []string
	logger   *zap.Logger
}

// New creates a Watcher for root. A debounce of zero uses DefaultDebounce.
func New(root string, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{root: root, debounce: debounce, ignore: DefaultIgnore, logger: logger}
}

// Watch blocks until ctx is done, calling onChange with the sorted relative
// paths that changed during each quiet period. onChange runs on the watch
// goroutine; events arriving meanwhile are batched into the next call.
func (w *Watcher) Watch(ctx context.Context, onChange func(changed []string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	w.logger.Info("Watching for changes", zap.String("dir", w.root))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := map[string]bool{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			rel, ok := w.relevant(event.Name)
			if !ok {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						w.logger.Debug("Failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}
			w.logger.Debug("File event", zap.String("path", rel), zap.String("op", event.Op.String()))
			pending[rel] = true
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			onChange(changed)
		}
	}
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if _, ok := w.relevant(p); !ok && p != w.root {
			return fs.SkipDir
		}
		return fw.Add(p)
	})
}

// relevant returns the slash path of name relative to the root, or false
// when the path is ignored.
func (w *Watcher) relevant(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return "", false
		}
	}
	return rel, true
}
