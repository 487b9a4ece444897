package daemon

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/timemory/doxsite/internal/errors"
	"github.com/timemory/doxsite/internal/logfields"
)

// Watcher observes the documentation sources and forwards change events as
// rebuild requests. Directories are watched recursively; newly created
// directories are picked up as they appear.
type Watcher struct {
	roots    []string
	ignore   []string // doublestar patterns, matched against slash paths
	suppress []string // absolute paths the build writes; never forwarded
	sink     func(Request)
}

// NewWatcher creates a watcher over the given root directories. The suppress
// list names paths the build itself writes into the watched tree; events
// under them are dropped so a build never queues its own follow-up rebuild.
func NewWatcher(roots, ignore, suppress []string, sink func(Request)) *Watcher {
	cleaned := make([]string, 0, len(suppress))
	for _, p := range suppress {
		cleaned = append(cleaned, filepath.Clean(p))
	}
	return &Watcher{roots: roots, ignore: ignore, suppress: cleaned, sink: sink}
}

// Run watches until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.CategoryDaemon, errors.SeverityFatal, "failed to create filesystem watcher")
	}
	defer func() { _ = fsw.Close() }()

	for _, root := range w.roots {
		if err := w.addTree(fsw, root); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}

			// Watch directories as they appear so nested changes are seen.
			if event.Op.Has(fsnotify.Create) {
				if info, serr := os.Stat(event.Name); serr == nil && info.IsDir() {
					if aerr := w.addTree(fsw, event.Name); aerr != nil {
						slog.Warn("failed to watch new directory",
							logfields.Path(event.Name), logfields.Error(aerr))
					}
				}
			}

			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
				!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			slog.Debug("source change detected",
				logfields.Path(event.Name),
				slog.String("op", event.Op.String()))
			w.sink(Request{Reason: "watch", Path: event.Name, RequestedAt: time.Now()})

		case werr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("filesystem watcher error", logfields.Error(werr))
		}
	}
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(err, errors.CategoryDaemon, errors.SeverityFatal, "failed to walk watch root")
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return fs.SkipDir
		}
		if werr := fsw.Add(path); werr != nil {
			return errors.Wrap(werr, errors.CategoryDaemon, errors.SeverityFatal, "failed to watch directory")
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	if w.suppressed(path) {
		return true
	}
	slashed := filepath.ToSlash(path)
	for _, pattern := range w.ignore {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
	}
	return false
}

// suppressed reports whether path is, or lives under, a build output.
func (w *Watcher) suppressed(path string) bool {
	path = filepath.Clean(path)
	for _, out := range w.suppress {
		if path == out || strings.HasPrefix(path, out+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
