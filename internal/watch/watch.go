// Package watch reruns the pipeline when one of its input files changes.
//
// Directories are watched rather than files: editors commonly replace a file
// by renaming a temporary copy over it, which drops a watch on the file
// itself. Events are filtered against the tracked file set and debounced.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a rerun.
const DefaultDebounce = 300 * time.Millisecond

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher reports changes to a set of tracked files.
type Watcher struct {
	debounce time.Duration
	fsw      *fsnotify.Watcher

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
}

// New creates a Watcher. A non-positive debounce selects DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.FileSystemError("failed to create file watcher").WithCause(err).Build()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		debounce: debounce,
		fsw:      fsw,
		files:    map[string]struct{}{},
		dirs:     map[string]struct{}{},
	}, nil
}

// Track replaces the tracked file set. Directories that are no longer needed
// stay watched; their events are filtered out.
func (w *Watcher) Track(files []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.files = make(map[string]struct{}, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return errors.FileSystemError("failed to resolve watched path").WithCause(err).WithContext("path", f).Build()
		}
		w.files[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return errors.FileSystemError("failed to watch directory").WithCause(err).WithContext("path", dir).Build()
		}
		w.dirs[dir] = struct{}{}
		slog.Debug("Watching directory", logfields.Dir(dir))
	}
	return nil
}

func (w *Watcher) tracked(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[abs]
	return ok
}

// Wait blocks until a tracked file changes and no further change follows
// within the debounce period. It returns the last changed path.
func (w *Watcher) Wait(ctx context.Context) (string, error) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		changed string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return "", errors.InternalError("file watcher closed").Build()
			}
			if event.Op&relevantOps == 0 || !w.tracked(event.Name) {
				continue
			}
			slog.Debug("Input change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			changed = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return "", errors.InternalError("file watcher closed").Build()
			}
			slog.Error("File watcher error", logfields.Error(err))
		case <-timerC:
			return changed, nil
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// RunFunc performs one run and returns the files it depends on. A failed run
// may still report files, for instance when parsing succeeded and the build
// did not.
type RunFunc func(ctx context.Context) ([]string, error)

// Loop calls run, then calls it again every time one of the files reported
// by the most recent run changes, until ctx is done. Run failures are logged
// and the loop keeps waiting; a failure with nothing to track ends the loop
// with its error.
func (w *Watcher) Loop(ctx context.Context, run RunFunc) error {
	var tracked []string
	for {
		files, err := run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if len(files) > 0 {
			tracked = files
		}
		if err != nil {
			if len(tracked) == 0 {
				return err
			}
			slog.Error("Run failed; waiting for changes", logfields.Error(err))
		}

		if err := w.Track(tracked); err != nil {
			return err
		}
		slog.Info("Watching for changes", logfields.Count(len(tracked)))

		path, err := w.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		slog.Info("Change detected, rerunning", logfields.Path(path))
	}
}
