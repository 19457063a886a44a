package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent is one filesystem change, with Path relative to the watch root.
type ChangeEvent struct {
	Path       string
	ChangeType string // "create", "write", "remove", "rename"
}

// FSWatcher watches a workspace tree and reports debounced batches of
// changes to paths accepted by its filter.
type FSWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	debounce time.Duration
	filter   *PatternFilter
	onChange func([]ChangeEvent)
}

// NewFSWatcher creates a watcher. A nil filter accepts every path.
func NewFSWatcher(debounce time.Duration, filter *PatternFilter, onChange func([]ChangeEvent)) (*FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	if filter == nil {
		filter = NewPatternFilter(nil, nil)
	}
	return &FSWatcher{
		watcher:  w,
		debounce: debounce,
		filter:   filter,
		onChange: onChange,
	}, nil
}

// WatchRecursive adds root and its subdirectories. Hidden directories such as
// the metadata and backup areas are skipped. The first root becomes the base
// for relative event paths.
func (w *FSWatcher) WatchRecursive(root string) error {
	if w.root == "" {
		w.root = root
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *FSWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debouncer := NewDebouncer(w.debounce, func(batch []ChangeEvent) {
		if w.onChange != nil {
			w.onChange(batch)
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" {
				continue
			}

			// New directories may later hold tracked files.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !strings.HasPrefix(info.Name(), ".") {
						_ = w.WatchRecursive(event.Name)
					}
					continue
				}
			}

			rel := w.relative(event.Name)
			if !w.filter.Matches(rel) {
				continue
			}
			debouncer.Trigger(ChangeEvent{Path: rel, ChangeType: changeType})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *FSWatcher) relative(name string) string {
	if w.root == "" {
		return filepath.ToSlash(name)
	}
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return filepath.ToSlash(name)
	}
	return filepath.ToSlash(rel)
}

func opToChangeType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
