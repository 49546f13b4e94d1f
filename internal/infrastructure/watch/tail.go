// Package watch follows files for appended content using fsnotify.
package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileTail invokes a callback whenever the watched file is created or
// written to. The parent directory is watched rather than the file itself
// so the tail survives the file not existing yet and atomic rewrites.
type FileTail struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()
}

// NewFileTail creates a tail for a single file.
func NewFileTail(path string, onChange func()) (*FileTail, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &FileTail{watcher: w, path: path, onChange: onChange}, nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (t *FileTail) Run(ctx context.Context) error {
	defer t.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-t.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != t.path {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				if t.onChange != nil {
					t.onChange()
				}
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}
