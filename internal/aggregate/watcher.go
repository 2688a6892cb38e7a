package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"hypoavg/internal"

	"github.com/fsnotify/fsnotify"
)

// Trigger is the no-argument "recompute requested" signal
type Trigger interface {
	Trigger()
}

// Watcher fires a trigger whenever a raw observation file appears under the data root.
// It watches the root, every hypothesis directory and every variant directory, adding
// new directories as they are created. Derived artifacts and temp files are ignored,
// so publishing never retriggers a pass.
type Watcher struct {
	root    string
	trigger Trigger
	watcher *fsnotify.Watcher
	logger  *internal.Logger
}

// NewWatcher creates a watcher for root
func NewWatcher(root string, trigger Trigger, logger *internal.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:    filepath.Clean(root),
		trigger: trigger,
		watcher: w,
		logger:  logger.WithComponent("Watcher"),
	}, nil
}

// Start registers the directory tree and blocks until ctx is cancelled
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root, 0); err != nil {
		return err
	}
	w.logger.Info("watching %s for new observations", w.root)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// Stop releases the underlying watcher. Safe to call more than once.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
		return
	}

	depth := w.depth(event.Name)
	if event.Has(fsnotify.Create) && depth > 0 && depth < 3 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name, depth); err != nil {
				w.logger.Warn("cannot watch %s: %v", event.Name, err)
			}
			// a directory moved in may already hold observations
			w.trigger.Trigger()
			return
		}
	}

	if depth == 3 && IsObservationFile(event.Name) {
		w.logger.Debug("observation changed: %s", event.Name)
		w.trigger.Trigger()
	}
}

// addTree watches dir (at depth below root) and its subdirectories down to variant level
func (w *Watcher) addTree(dir string, depth int) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	if depth >= 2 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := w.addTree(filepath.Join(dir, e.Name()), depth+1); err != nil {
			w.logger.Warn("cannot watch %s: %v", filepath.Join(dir, e.Name()), err)
		}
	}
	return nil
}

// depth is 1 for a hypothesis dir, 2 for a variant dir, 3 for a file inside a variant
func (w *Watcher) depth(path string) int {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return 0
	}
	return len(strings.Split(filepath.ToSlash(rel), "/"))
}
